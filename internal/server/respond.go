package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/documind/documind/internal/common"
)

// maxBodyBytes bounds request bodies; OCR text submissions are the
// largest expected payload and stay well under this.
const maxBodyBytes = 4 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("http.encode_failed", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	body := errorBody{Error: err.Error()}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.Code
		body.Error = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request_failed",
			"path", r.URL.Path, "status", status, "error", err,
			"request_id", common.RequestIDFromContext(r.Context()))
	} else {
		s.logger.Warn("http.request_rejected",
			"path", r.URL.Path, "status", status, "error", err,
			"request_id", common.RequestIDFromContext(r.Context()))
	}
	s.sendJSON(w, status, body)
}

// readBody drains the request body under the size cap.
func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, common.NewAppError("READ_BODY", "read request body", err)
	}
	if len(b) > maxBodyBytes {
		return nil, common.NewAppError("BODY_TOO_LARGE", "request body exceeds limit", common.ErrInvalidInput)
	}
	if len(b) == 0 {
		return nil, common.NewAppError("EMPTY_BODY", "request body is required", common.ErrInvalidInput)
	}
	return b, nil
}
