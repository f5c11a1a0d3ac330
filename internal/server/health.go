package server

import (
	"net/http"
	"time"

	"github.com/documind/documind/internal/repository"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := repository.HealthCheck(r.Context(), s.db, 3*time.Second, s.logger); err != nil {
		s.sendJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	s.sendJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
