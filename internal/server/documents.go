package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/documind/documind/internal/async"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
)

type createDocumentRequest struct {
	Path     string `json:"path,omitempty"`
	Text     string `json:"text,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type createDocumentResponse struct {
	Document     *entity.Document   `json:"document"`
	Deduplicated bool               `json:"deduplicated"`
	Queued       bool               `json:"queued,omitempty"`
	Extraction   *entity.Extraction `json:"extraction,omitempty"`
}

// handleCreateDocument accepts either a server-local file path, which is
// ingested and processed asynchronously, or raw text, which is processed
// before the response is written.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if err := s.validateBody(s.createSchema, body); err != nil {
		s.sendError(w, r, err)
		return
	}
	var req createDocumentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, r, common.NewAppError("BAD_REQUEST_BODY", "decode request", err))
		return
	}
	if (req.Path == "") == (req.Text == "") {
		s.sendError(w, r, common.NewAppError("BAD_REQUEST_BODY", "exactly one of path or text is required", common.ErrInvalidInput))
		return
	}

	if req.Path != "" {
		doc, dedup, err := s.docs.IngestPath(r.Context(), req.Path)
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		err = s.queue.Enqueue(r.Context(), async.Job{
			DocumentID:  doc.ID,
			Force:       dedup,
			SubmittedAt: time.Now().UTC(),
			TraceID:     common.RequestIDFromContext(r.Context()),
		})
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		s.sendJSON(w, http.StatusAccepted, createDocumentResponse{Document: doc, Deduplicated: dedup, Queued: true})
		return
	}

	doc, dedup, err := s.docs.CreateFromText(r.Context(), req.Filename, req.Text)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	ex, err := s.docs.ProcessText(r.Context(), doc.ID, req.Text)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	doc, _, err = s.docs.GetDocument(r.Context(), doc.ID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, createDocumentResponse{Document: doc, Deduplicated: dedup, Extraction: ex})
}

type listDocumentsResponse struct {
	Documents []*entity.Document `json:"documents"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.sendError(w, r, common.NewAppError("BAD_LIMIT", "limit must be a positive integer", common.ErrInvalidInput))
			return
		}
		limit = n
	}
	docs, err := s.docs.ListDocuments(r.Context(), limit)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	s.sendJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs})
}

type documentResponse struct {
	Document   *entity.Document   `json:"document"`
	Extraction *entity.Extraction `json:"extraction,omitempty"`
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	doc, ex, err := s.docs.GetDocument(common.WithDocumentID(r.Context(), id.String()), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, documentResponse{Document: doc, Extraction: ex})
}

type processDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Queued     bool   `json:"queued"`
}

// handleProcessDocument requeues a stored document for a fresh run.
func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	// existence check up front so a bogus id is a 404, not a queued no-op
	if _, _, err := s.docs.GetDocument(r.Context(), id); err != nil {
		s.sendError(w, r, err)
		return
	}
	err = s.queue.Enqueue(r.Context(), async.Job{
		DocumentID:  id,
		Force:       true,
		SubmittedAt: time.Now().UTC(),
		TraceID:     common.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusAccepted, processDocumentResponse{DocumentID: id.String(), Queued: true})
}
