// Package server exposes the document engine over HTTP/JSON.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/internal/async"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/documents"
	"github.com/documind/documind/internal/export"
	"github.com/documind/documind/internal/ner"
)

type Server struct {
	docs     *documents.Service
	exporter *export.Service
	queue    async.Queue
	db       *sql.DB
	logger   *slog.Logger

	correctionSchema map[string]any
	createSchema     map[string]any
}

func NewServer(docs *documents.Service, exporter *export.Service, queue async.Queue, db *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		docs:             docs,
		exporter:         exporter,
		queue:            queue,
		db:               db,
		logger:           logger,
		correctionSchema: buildCorrectionRequestSchema(),
		createSchema:     buildCreateRequestSchema(),
	}
}

// Handler builds the route table. Every route runs behind the request-id
// and access-log middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("POST /v1/documents/{id}/process", s.handleProcessDocument)
	mux.HandleFunc("POST /v1/documents/{id}/corrections", s.handleApplyCorrection)
	mux.HandleFunc("GET /v1/documents/{id}/corrections", s.handleListCorrections)
	mux.HandleFunc("GET /v1/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestID(s.withAccessLog(mux))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), reqID)))
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", float64(time.Since(start).Microseconds())/1000.0,
			"request_id", common.RequestIDFromContext(r.Context()))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// documentID pulls and parses the {id} path segment. A nil error means the
// UUID is usable.
func documentID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError("BAD_DOCUMENT_ID", "id must be a UUID", common.ErrInvalidInput)
	}
	return id, nil
}

// Request bodies are schema-checked before decoding so malformed payloads
// fail with a precise message instead of a zero-valued struct.

func buildCreateRequestSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"path":     map[string]any{"type": "string", "minLength": 1},
			"text":     map[string]any{"type": "string", "minLength": 1},
			"filename": map[string]any{"type": "string"},
		},
	}
}

func buildCorrectionRequestSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"field_key": map[string]any{"type": "string", "minLength": 1},
			"value":     map[string]any{},
		},
		"required": []string{"field_key", "value"},
	}
}

func (s *Server) validateBody(schema map[string]any, body []byte) error {
	if err := ner.ValidateJSONAgainstSchema(schema, body); err != nil {
		return common.NewAppError("BAD_REQUEST_BODY", err.Error(), common.ErrInvalidInput)
	}
	return nil
}
