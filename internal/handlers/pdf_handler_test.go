package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/services/cache"
	"github.com/ternarybob/analyst/internal/services/pdf"
	"github.com/ternarybob/arbor"
)

// mockPDFService implements interfaces.PDFService for testing
type mockPDFService struct {
	renderFunc func(ticker, markdown string) ([]byte, error)
}

func (m *mockPDFService) Render(ticker, markdown string) ([]byte, error) {
	return m.renderFunc(ticker, markdown)
}

func executePDFRequest(handler *PDFHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/pdf", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.PDFHandler(rec, req)
	return rec
}

func TestPDFHandler_Success(t *testing.T) {
	reports := cache.NewReportCache(10, arbor.NewLogger())
	id := reports.Store("## 1. Executive Summary\n- **Recommendation:** BUY")
	handler := NewPDFHandler(reports, pdf.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := executePDFRequest(handler, fmt.Sprintf(`{"ticker":"nvda","report_id":"%s"}`, id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="NVDA_Investment_Memo.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestPDFHandler_NotFound(t *testing.T) {
	reports := cache.NewReportCache(10, arbor.NewLogger())
	handler := NewPDFHandler(reports, pdf.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := executePDFRequest(handler, `{"ticker":"AAPL","report_id":"does-not-exist"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "not found")
}

func TestPDFHandler_FlushedReportIsGone(t *testing.T) {
	reports := cache.NewReportCache(2, arbor.NewLogger())
	first := reports.Store("first")
	reports.Store("second")
	latest := reports.Store("third")
	handler := NewPDFHandler(reports, pdf.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := executePDFRequest(handler, fmt.Sprintf(`{"ticker":"AAPL","report_id":"%s"}`, first))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = executePDFRequest(handler, fmt.Sprintf(`{"ticker":"AAPL","report_id":"%s"}`, latest))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPDFHandler_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `not json`, http.StatusBadRequest},
		{"missing report id", `{"ticker":"AAPL"}`, http.StatusBadRequest},
		{"blank report id", `{"ticker":"AAPL","report_id":"   "}`, http.StatusBadRequest},
		{"missing ticker", `{"report_id":"x"}`, http.StatusBadRequest},
		{"invalid ticker", `{"ticker":"A/B","report_id":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPDFHandler(cache.NewReportCache(10, arbor.NewLogger()), &mockPDFService{}, arbor.NewLogger())
			rec := executePDFRequest(handler, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPDFHandler_RenderFailure(t *testing.T) {
	reports := cache.NewReportCache(10, arbor.NewLogger())
	id := reports.Store("memo")
	failing := &mockPDFService{renderFunc: func(ticker, markdown string) ([]byte, error) {
		return nil, fmt.Errorf("%w: font missing", common.ErrRender)
	}}
	handler := NewPDFHandler(reports, failing, arbor.NewLogger())

	rec := executePDFRequest(handler, fmt.Sprintf(`{"ticker":"AAPL","report_id":"%s"}`, id))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "font missing")
}
