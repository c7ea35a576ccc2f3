package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/eodhd"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// Registry holds the tools offered to every agent run
type Registry struct {
	quote  *QuoteTool
	search *SearchTool
}

// NewRegistry wires the tools from configuration.
func NewRegistry(ctx context.Context, config *common.Config, logger arbor.ILogger) (*Registry, error) {
	market := eodhd.NewClient(
		config.EODHD.APIKey,
		eodhd.WithBaseURL(config.EODHD.BaseURL),
		eodhd.WithRateLimit(config.EODHD.RateLimit),
		eodhd.WithLogger(logger),
	)

	provider, err := NewSearchProvider(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	return NewRegistryWith(market, provider, config.Search.MaxResults, logger), nil
}

// NewRegistryWith builds a registry from explicit dependencies
func NewRegistryWith(market interfaces.MarketDataClient, provider interfaces.SearchProvider, maxResults int, logger arbor.ILogger) *Registry {
	return &Registry{
		quote:  NewQuoteTool(market, logger),
		search: NewSearchTool(provider, maxResults, logger),
	}
}

// NewSearchProvider selects the web search backend named by search.provider
func NewSearchProvider(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.SearchProvider, error) {
	switch strings.ToLower(config.Search.Provider) {
	case "", "duckduckgo":
		return NewDuckDuckGoProvider(config.Search.BaseURL, nil), nil
	case "gemini":
		provider, err := NewGeminiProvider(ctx, config.Gemini.APIKey, config.Gemini.Model)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini search unavailable, falling back to DuckDuckGo")
			return NewDuckDuckGoProvider(config.Search.BaseURL, nil), nil
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", config.Search.Provider)
	}
}

// Tools returns the fixed, ordered tool list: financial data first, then web search
func (r *Registry) Tools() []models.Tool {
	return []models.Tool{
		r.quote.Tool(),
		r.search.Tool(),
	}
}
