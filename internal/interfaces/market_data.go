package interfaces

import (
	"context"

	"github.com/ternarybob/analyst/internal/eodhd"
)

// MarketDataClient is the subset of the EODHD client used by the financial data tool
type MarketDataClient interface {
	HasAPIKey() bool
	GetRealTimeQuote(ctx context.Context, symbol string) (*eodhd.RealTimeQuote, error)
	GetFundamentals(ctx context.Context, symbol string) (*eodhd.FundamentalsResponse, error)
	GetNews(ctx context.Context, symbols []string, opts ...eodhd.QueryOption) (eodhd.NewsResponse, error)
}
