package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/analyst/internal/services/cache"
	"github.com/ternarybob/arbor"
)

func TestHealthHandler(t *testing.T) {
	reports := cache.NewReportCache(10, arbor.NewLogger())
	reports.Store("a")
	reports.Store("b")
	handler := NewAPIHandler(reports, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.HealthResponse{Status: "ok", ReportsCached: 2}, resp)
}

func TestVersionHandler(t *testing.T) {
	handler := NewAPIHandler(cache.NewReportCache(10, arbor.NewLogger()), arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, common.GetVersion(), resp["version"])
	assert.Contains(t, resp, "git_commit")
}

func TestNotFoundHandler(t *testing.T) {
	handler := NewAPIHandler(cache.NewReportCache(10, arbor.NewLogger()), arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeDetail(t, rec))
}
