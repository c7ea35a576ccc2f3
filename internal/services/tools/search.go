package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

const (
	// SearchToolName is the tool name the agent calls for web search
	SearchToolName = "web_search"

	// NoResultsText is returned when a search yields nothing
	NoResultsText = "No results found."

	// SearchErrorPrefix starts every failure text returned by the search tool
	SearchErrorPrefix = "Search Error:"

	DefaultMaxResults = 5
	maxResultsCap     = 10
)

// SearchTool wraps a SearchProvider as an agent tool
type SearchTool struct {
	provider          interfaces.SearchProvider
	defaultMaxResults int
	logger            arbor.ILogger
}

// NewSearchTool creates the web search tool. defaultMaxResults <= 0 selects DefaultMaxResults.
func NewSearchTool(provider interfaces.SearchProvider, defaultMaxResults int, logger arbor.ILogger) *SearchTool {
	if defaultMaxResults <= 0 {
		defaultMaxResults = DefaultMaxResults
	}
	return &SearchTool{
		provider:          provider,
		defaultMaxResults: clamp(defaultMaxResults, 1, maxResultsCap),
		logger:            logger,
	}
}

// Tool returns the agent-facing descriptor
func (s *SearchTool) Tool() models.Tool {
	return models.Tool{
		Name:        SearchToolName,
		Description: "Search the web for current information such as stock prices, company news, earnings and analyst commentary.",
		Parameters: []models.ToolParameter{
			{Name: "query", Type: "string", Description: "Search query", Required: true},
			{Name: "max_results", Type: "integer", Description: fmt.Sprintf("Maximum number of results (1-%d, default %d)", maxResultsCap, s.defaultMaxResults)},
		},
		Invoke: func(ctx context.Context, args map[string]any) string {
			query, _ := stringArg(args, "query")
			maxResults, ok := intArg(args, "max_results")
			if !ok {
				maxResults = s.defaultMaxResults
			}
			return s.Search(ctx, query, maxResults)
		},
	}
}

// Search runs query and renders the results as numbered text.
// Provider failures, including panics, are reported as text.
func (s *SearchTool) Search(ctx context.Context, query string, maxResults int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error().Str("query", query).Str("panic", fmt.Sprintf("%v", r)).Msg("Recovered from panic in web search")
			}
			out = fmt.Sprintf("%s %v", SearchErrorPrefix, r)
		}
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return SearchErrorPrefix + " query is required"
	}
	if s.provider == nil {
		return SearchErrorPrefix + " no search provider configured"
	}
	maxResults = clamp(maxResults, 1, maxResultsCap)

	results, err := s.provider.Search(ctx, query, maxResults)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn().Str("provider", s.provider.Name()).Str("query", query).Err(err).Msg("Web search failed")
		}
		return fmt.Sprintf("%s %v", SearchErrorPrefix, err)
	}
	if results.Empty() {
		return NoResultsText
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("provider", s.provider.Name()).
			Str("query", query).
			Int("results", len(results.Results)).
			Msg("Web search completed")
	}

	return formatResults(results, maxResults)
}

func formatResults(results *models.SearchResults, maxResults int) string {
	var b strings.Builder
	if results.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n\n", strings.TrimSpace(results.Summary))
	}
	if len(results.Results) > 0 {
		b.WriteString("Results:\n")
	}
	for i, r := range results.Results {
		if i >= maxResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(r.Title))
		if r.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		}
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			fmt.Fprintf(&b, "   %s\n", snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
