package interfaces

import (
	"context"

	"github.com/ternarybob/analyst/internal/models"
)

// SearchProvider performs web searches for the web_search tool
type SearchProvider interface {
	// Search returns at most maxResults results for query.
	// An empty result set is not an error.
	Search(ctx context.Context, query string, maxResults int) (*models.SearchResults, error)

	// Name returns the provider name (e.g. "duckduckgo", "gemini")
	Name() string
}
