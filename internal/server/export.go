package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/utils"
)

// handleExportXLSX streams a workbook of completed runs. Both query
// parameters are optional YYYY-MM-DD dates; only "from" widens the window
// to today.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	var fromPtr, toPtr *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		t, err := utils.ParseYMD(raw)
		if err != nil {
			s.sendError(w, r, common.NewAppError("BAD_DATE", "from must be YYYY-MM-DD", common.ErrInvalidInput))
			return
		}
		fromPtr = &t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		t, err := utils.ParseYMD(raw)
		if err != nil {
			s.sendError(w, r, common.NewAppError("BAD_DATE", "to must be YYYY-MM-DD", common.ErrInvalidInput))
			return
		}
		toPtr = &t
	}
	if fromPtr != nil && toPtr != nil && toPtr.Before(*fromPtr) {
		s.sendError(w, r, common.NewAppError("BAD_DATE", "to must not be before from", common.ErrInvalidInput))
		return
	}

	xlsx, err := s.exporter.ExportResultsXLSX(r.Context(), fromPtr, toPtr)
	if err != nil {
		s.sendError(w, r, err)
		return
	}

	name := fmt.Sprintf("documents-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(xlsx); err != nil {
		s.logger.Warn("http.export_write_failed", "error", err)
	}
}
