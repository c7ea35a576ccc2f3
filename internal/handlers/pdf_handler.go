package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// PDFHandler renders cached memos
type PDFHandler struct {
	cache  interfaces.ReportCache
	pdf    interfaces.PDFService
	logger arbor.ILogger
}

func NewPDFHandler(cache interfaces.ReportCache, pdf interfaces.PDFService, logger arbor.ILogger) *PDFHandler {
	return &PDFHandler{
		cache:  cache,
		pdf:    pdf,
		logger: logger,
	}
}

// PDFHandler handles POST /api/pdf
func (h *PDFHandler) PDFHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PDFRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ticker := strings.TrimSpace(req.Ticker)
	reportID := strings.TrimSpace(req.ReportID)

	markdown, ok := h.cache.Retrieve(reportID)
	if !ok {
		h.logger.Debug().Str("report_id", reportID).Msg("Report not found in cache")
		WriteServiceError(w, fmt.Errorf("%w: report not found or expired", common.ErrNotFound))
		return
	}

	data, err := h.pdf.Render(ticker, markdown)
	if err != nil {
		h.logger.Error().Str("ticker", ticker).Str("report_id", reportID).Err(err).Msg("PDF render failed")
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_Investment_Memo.pdf"`, strings.ToUpper(ticker)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn().Str("report_id", reportID).Err(err).Msg("Failed to write PDF response")
	}
}
