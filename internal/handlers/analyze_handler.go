package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// AnalyzeHandler generates memos and caches them for PDF export
type AnalyzeHandler struct {
	generator interfaces.ReportGenerator
	cache     interfaces.ReportCache
	logger    arbor.ILogger
}

func NewAnalyzeHandler(generator interfaces.ReportGenerator, cache interfaces.ReportCache, logger arbor.ILogger) *AnalyzeHandler {
	return &AnalyzeHandler{
		generator: generator,
		cache:     cache,
		logger:    logger,
	}
}

// AnalyzeHandler handles POST /api/analyze
func (h *AnalyzeHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ticker := strings.TrimSpace(req.Ticker)

	start := time.Now()
	markdown, err := h.generator.Generate(r.Context(), ticker, req.Model)
	if err != nil {
		h.logger.Error().
			Str("ticker", ticker).
			Str("model", req.Model).
			Err(err).
			Msg("Analysis failed")
		WriteServiceError(w, err)
		return
	}

	reportID := h.cache.Store(markdown)

	h.logger.Info().
		Str("ticker", ticker).
		Str("report_id", reportID).
		Dur("duration", time.Since(start)).
		Msg("Analysis complete")

	WriteJSON(w, http.StatusOK, models.AnalysisResponse{
		Markdown: markdown,
		ReportID: reportID,
	})
}
