package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/analyst/internal/models"
	"google.golang.org/genai"
)

// DefaultGeminiSearchModel is used when no model is configured
const DefaultGeminiSearchModel = "gemini-2.5-flash"

// GeminiProvider answers queries with Gemini using Google Search grounding.
// The grounded answer becomes the summary; grounding chunks become results.
type GeminiProvider struct {
	client *genai.Client
	model  string
	now    func() time.Time
}

// NewGeminiProvider creates a grounded search provider
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required for grounded search")
	}
	if model == "" {
		model = DefaultGeminiSearchModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		now:    time.Now,
	}, nil
}

// Name returns the provider name
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// Search runs one grounded generation for query
func (g *GeminiProvider) Search(ctx context.Context, query string, maxResults int) (*models.SearchResults, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	prompt := fmt.Sprintf(`You are a research assistant. Today's date is %s.
Search the web and answer the query concisely with specific facts, figures and dates.

Query: %s`, g.now().Format("January 2, 2006"), query)

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini search failed: %w", err)
	}

	return groundedResults(resp, query, maxResults), nil
}

func groundedResults(resp *genai.GenerateContentResponse, query string, maxResults int) *models.SearchResults {
	results := &models.SearchResults{Query: query}
	if resp == nil || len(resp.Candidates) == 0 {
		return results
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		var text []string
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				text = append(text, part.Text)
			}
		}
		results.Summary = strings.TrimSpace(strings.Join(text, "\n"))
	}

	if gm := candidate.GroundingMetadata; gm != nil {
		seen := make(map[string]bool)
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			results.Results = append(results.Results, models.SearchResult{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
			if len(results.Results) >= maxResults {
				break
			}
		}
	}

	return results
}
