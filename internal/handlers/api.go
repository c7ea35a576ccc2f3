package handlers

import (
	"net/http"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

type APIHandler struct {
	cache  interfaces.ReportCache
	logger arbor.ILogger
}

func NewAPIHandler(cache interfaces.ReportCache, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		cache:  cache,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "ok",
		ReportsCached: h.cache.Len(),
	})
}

// NotFoundHandler answers unknown /api/ paths with JSON instead of the static site
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("path", r.URL.Path).Msg("Unknown API route")
	WriteError(w, http.StatusNotFound, "Not Found")
}
