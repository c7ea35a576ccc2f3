// Package models provides request, response and domain types shared across services.
package models

import "time"

// AnalysisRequest is the body of POST /api/analyze
type AnalysisRequest struct {
	Ticker string `json:"ticker" validate:"required,ticker"`
	Model  string `json:"model,omitempty" validate:"max=100"` // Empty selects the configured default model
}

// AnalysisResponse is returned by POST /api/analyze
type AnalysisResponse struct {
	Markdown string `json:"markdown"`
	ReportID string `json:"report_id"`
}

// PDFRequest is the body of POST /api/pdf
type PDFRequest struct {
	Ticker   string `json:"ticker" validate:"required,ticker"`
	ReportID string `json:"report_id" validate:"notblank"`
}

// Report is a generated memo held by the report cache
type Report struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker,omitempty"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status        string `json:"status"`
	ReportsCached int    `json:"reports_cached"`
}

// ErrorResponse is the JSON error body for every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}
