package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithRateLimit(100))
}

func TestGetRealTimeQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/AAPL.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"AAPL.US","timestamp":1700000000,"close":189.5,"previousClose":"187.25","change":2.25,"change_p":1.2,"volume":"NA"}`))
	})

	quote, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)

	assert.Equal(t, "AAPL.US", quote.Code)
	assert.True(t, quote.Close.Valid)
	assert.InDelta(t, 189.5, quote.Close.Value, 1e-9)
	assert.InDelta(t, 187.25, quote.PreviousClose.Value, 1e-9)
	assert.False(t, quote.Volume.Valid, "NA decodes as invalid")
	assert.Equal(t, int64(1700000000), quote.Time().Unix())
}

func TestGetFundamentals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/RELIANCE.NSE", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filter"), "Highlights")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"General":    map[string]any{"Name": "Reliance Industries", "CurrencyCode": "INR", "Sector": "Energy"},
			"Highlights": map[string]any{"PERatio": 24.1, "ProfitMargin": 0.08, "MarketCapitalization": nil},
			"AnalystRatings": map[string]any{
				"Rating": 4.2, "TargetPrice": 3100, "StrongBuy": 10, "Buy": 5, "Hold": 3,
			},
		})
	})

	f, err := client.GetFundamentals(context.Background(), "RELIANCE.NSE")
	require.NoError(t, err)

	require.NotNil(t, f.General)
	assert.Equal(t, "INR", f.General.CurrencyCode)
	require.NotNil(t, f.Highlights)
	assert.InDelta(t, 24.1, f.Highlights.PERatio.Value, 1e-9)
	assert.False(t, f.Highlights.MarketCapitalization.Valid)
	assert.Nil(t, f.Valuation)
	assert.Equal(t, "buy", f.AnalystRatings.Consensus())
	assert.Equal(t, 18, f.AnalystRatings.Analysts())
}

func TestGetNews(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "TSLA.US", r.URL.Query().Get("s"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"date":"2025-01-02T10:00:00+00:00","title":"Deliveries beat"},{"date":"2025-01-01","title":"Old news"}]`))
	})

	news, err := client.GetNews(context.Background(), []string{"TSLA.US"}, WithLimit(3))
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "Deliveries beat", news[0].Title)
	assert.Equal(t, 2025, news[0].Date.Year())
	assert.False(t, news[1].Date.IsZero())
}

func TestClientErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Ticker Not Found.", http.StatusNotFound)
		})
		_, err := client.GetRealTimeQuote(context.Background(), "NOPE.US")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Ticker Not Found.", apiErr.Message)
		assert.False(t, IsRateLimit(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := client.GetFundamentals(context.Background(), "AAPL.US")
		require.Error(t, err)
		assert.True(t, IsRateLimit(err))
	})

	t.Run("bad json", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := client.GetNews(context.Background(), []string{"AAPL.US"})
		assert.Error(t, err)
	})
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`12.5`, 12.5, true},
		{`"7"`, 7, true},
		{`"NA"`, 0, false},
		{`null`, 0, false},
		{`{}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.valid, n.Valid)
			assert.InDelta(t, tt.want, n.Value, 1e-9)
		})
	}
}
