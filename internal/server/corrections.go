package server

import (
	"encoding/json"
	"net/http"

	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/pipeline"
)

type correctionRequest struct {
	FieldKey string `json:"field_key"`
	Value    any    `json:"value"`
}

type correctionResponse struct {
	Correction *entity.Correction       `json:"correction"`
	Result     *pipeline.DocumentResult `json:"result"`
}

// handleApplyCorrection overrides one field of the latest stored result.
// field_key is the flattened path, e.g. "invoice_number" or
// "line_items.0.amount".
func (s *Server) handleApplyCorrection(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if err := s.validateBody(s.correctionSchema, body); err != nil {
		s.sendError(w, r, err)
		return
	}
	var req correctionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, r, common.NewAppError("BAD_REQUEST_BODY", "decode request", err))
		return
	}

	row, result, err := s.docs.ApplyCorrection(common.WithDocumentID(r.Context(), id.String()), id, req.FieldKey, req.Value)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.logger.Info("http.correction_applied",
		"document_id", id, "field_key", req.FieldKey,
		"request_id", common.RequestIDFromContext(r.Context()))
	s.sendJSON(w, http.StatusOK, correctionResponse{Correction: row, Result: result})
}

type listCorrectionsResponse struct {
	Corrections []*entity.Correction `json:"corrections"`
}

func (s *Server) handleListCorrections(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	rows, err := s.docs.ListCorrections(r.Context(), id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*entity.Correction{}
	}
	s.sendJSON(w, http.StatusOK, listCorrectionsResponse{Corrections: rows})
}
