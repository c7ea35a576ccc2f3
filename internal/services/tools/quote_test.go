package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/analyst/internal/eodhd"
	"github.com/ternarybob/arbor"
)

// mockMarketData implements interfaces.MarketDataClient for testing
type mockMarketData struct {
	noKey           bool
	quoteFunc       func(symbol string) (*eodhd.RealTimeQuote, error)
	fundamentalsErr error
	fundamentals    *eodhd.FundamentalsResponse
	news            eodhd.NewsResponse
	newsErr         error
	symbols         []string
}

func (m *mockMarketData) HasAPIKey() bool { return !m.noKey }

func (m *mockMarketData) GetRealTimeQuote(ctx context.Context, symbol string) (*eodhd.RealTimeQuote, error) {
	if m.quoteFunc != nil {
		return m.quoteFunc(symbol)
	}
	return nil, errors.New("no quote")
}

func (m *mockMarketData) GetFundamentals(ctx context.Context, symbol string) (*eodhd.FundamentalsResponse, error) {
	return m.fundamentals, m.fundamentalsErr
}

func (m *mockMarketData) GetNews(ctx context.Context, symbols []string, opts ...eodhd.QueryOption) (eodhd.NewsResponse, error) {
	return m.news, m.newsErr
}

func number(v float64) eodhd.Number {
	return eodhd.Number{Value: v, Valid: true}
}

func TestQuoteTool_FullData(t *testing.T) {
	var requested string
	market := &mockMarketData{
		quoteFunc: func(symbol string) (*eodhd.RealTimeQuote, error) {
			requested = symbol
			return &eodhd.RealTimeQuote{Code: symbol, Close: number(2950.5), Change: number(12), ChangePercent: number(0.41)}, nil
		},
		fundamentals: &eodhd.FundamentalsResponse{
			General:    &eodhd.GeneralInfo{Name: "Reliance Industries", CurrencyCode: "INR"},
			Highlights: &eodhd.Highlights{PERatio: number(27.3), ProfitMargin: number(0.0812), MarketCapitalization: number(2.0e13)},
			AnalystRatings: &eodhd.AnalystRatings{
				Rating: number(4.1), TargetPrice: number(3200), Buy: 10, Hold: 2,
			},
		},
		news: eodhd.NewsResponse{
			{DateStr: "2025-01-02", Title: "Q3 results beat"},
			{DateStr: "2025-01-01", Title: "Jio tariff hike"},
			{DateStr: "2024-12-31", Title: "Retail expansion"},
			{DateStr: "2024-12-30", Title: "Should be cut"},
		},
	}

	out := NewQuoteTool(market, arbor.NewLogger()).Lookup(context.Background(), "reliance.ns")

	assert.Equal(t, "RELIANCE.NSE", requested)
	assert.False(t, strings.HasPrefix(out, QuoteErrorPrefix))
	assert.Contains(t, out, "Reliance Industries")
	assert.Contains(t, out, "Current price: 2950.50 INR")
	assert.Contains(t, out, "P/E ratio: 27.30")
	assert.Contains(t, out, "Profit margin: 8.12%")
	assert.Contains(t, out, "Market cap: 20.00T")
	assert.Contains(t, out, "Analyst recommendation: buy")
	assert.Contains(t, out, "target price 3200.00 INR")
	assert.Contains(t, out, "3. [2024-12-31] Retail expansion")
	assert.NotContains(t, out, "Should be cut")
}

func TestQuoteTool_PartialData(t *testing.T) {
	market := &mockMarketData{
		quoteFunc: func(symbol string) (*eodhd.RealTimeQuote, error) {
			return &eodhd.RealTimeQuote{Close: number(101.25)}, nil
		},
		fundamentalsErr: &eodhd.APIError{StatusCode: 403, Message: "forbidden", Endpoint: "/fundamentals/X.US"},
		newsErr:         errors.New("timeout"),
	}

	out := NewQuoteTool(market, nil).Lookup(context.Background(), "X")

	assert.Contains(t, out, "Current price: 101.25")
	assert.Contains(t, out, "Fundamentals: Data Unavailable")
	assert.Contains(t, out, "Recent news: Data Unavailable (timeout)")
}

func TestQuoteTool_Errors(t *testing.T) {
	tests := []struct {
		name     string
		market   *mockMarketData
		ticker   string
		contains string
	}{
		{
			name:     "invalid ticker",
			market:   &mockMarketData{},
			ticker:   "$$$",
			contains: "invalid ticker",
		},
		{
			name:     "missing key",
			market:   &mockMarketData{noKey: true},
			ticker:   "AAPL",
			contains: "Use web_search",
		},
		{
			name: "rate limited",
			market: &mockMarketData{
				quoteFunc: func(string) (*eodhd.RealTimeQuote, error) {
					return nil, &eodhd.RateLimitError{}
				},
				fundamentalsErr: &eodhd.RateLimitError{},
				newsErr:         &eodhd.RateLimitError{},
			},
			ticker:   "AAPL",
			contains: "rate limit reached",
		},
		{
			name: "nothing available",
			market: &mockMarketData{
				fundamentalsErr: errors.New("boom"),
			},
			ticker:   "AAPL",
			contains: "could not fetch data for AAPL (AAPL.US)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewQuoteTool(tt.market, arbor.NewLogger()).Lookup(context.Background(), tt.ticker)
			assert.True(t, strings.HasPrefix(out, QuoteErrorPrefix), "got %q", out)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestQuoteTool_Descriptor(t *testing.T) {
	market := &mockMarketData{noKey: true}
	tool := NewQuoteTool(market, nil).Tool()

	assert.Equal(t, QuoteToolName, tool.Name)
	assert.Equal(t, []string{"ticker"}, tool.RequiredNames())

	out := tool.Invoke(context.Background(), map[string]any{"ticker": "MSFT"})
	assert.Contains(t, out, "MSFT")

	out = tool.Invoke(context.Background(), map[string]any{})
	assert.True(t, strings.HasPrefix(out, QuoteErrorPrefix))
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want int
		ok   bool
	}{
		{"float", float64(7), 7, true},
		{"int", 3, 3, true},
		{"json number", json.Number("4"), 4, true},
		{"string", " 6 ", 6, true},
		{"bad string", "six", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intArg(map[string]any{"n": tt.v}, "n")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := intArg(map[string]any{}, "n")
	require.False(t, ok)
}
