package server

import (
	"net/http"
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/models"
)

var startTime = time.Now()

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": common.GetVersion(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":     common.GetVersion(),
		"build":       common.GetBuild(),
		"git_commit":  common.GetGitCommit(),
		"environment": s.app.Config.Environment,
	})
}

// handleAgent handles POST /api/agent: the single agent entry point. The
// envelope is always 200; planning failures are expressed as ok:false in the
// body, matching the agent contract.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var input models.AgentInput
	if !DecodeJSON(w, r, &input) {
		return
	}
	if input.InputType == "" {
		input.InputType = "text"
	}

	envelope := s.app.Agent.Run(r.Context(), input)
	WriteJSON(w, http.StatusOK, envelope)
}

// handleReportList handles GET /api/reports.
func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	files, err := s.app.Report.ListReports()
	if err != nil {
		s.logger.Error().Err(err).Msg("report listing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": files,
		"count":   len(files),
	})
}

// handleReportDownload handles GET /api/reports/download?path=<rel>.
func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rel := r.URL.Query().Get("path")
	if rel == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'path' is required")
		return
	}

	abs, err := s.app.Report.ResolveDownloadPath(rel)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Report file not found")
		return
	}
	http.ServeFile(w, r, abs)
}
