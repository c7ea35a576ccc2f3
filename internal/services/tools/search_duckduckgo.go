package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/analyst/internal/httpclient"
	"github.com/ternarybob/analyst/internal/models"
)

// DefaultDuckDuckGoURL is the keyless HTML search endpoint
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

const duckDuckGoUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML results page
type DuckDuckGoProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewDuckDuckGoProvider creates a provider; empty endpoint selects DefaultDuckDuckGoURL
func NewDuckDuckGoProvider(endpoint string, httpClient *http.Client) *DuckDuckGoProvider {
	if endpoint == "" {
		endpoint = DefaultDuckDuckGoURL
	}
	if httpClient == nil {
		httpClient = httpclient.NewHTTPClientWithUserAgent(20*time.Second, duckDuckGoUserAgent)
	}
	return &DuckDuckGoProvider{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Name returns the provider name
func (d *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}

// Search posts the query to the HTML endpoint and parses result blocks
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) (*models.SearchResults, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo response: %w", err)
	}

	return parseDuckDuckGo(doc, query, maxResults), nil
}

func parseDuckDuckGo(doc *goquery.Document, query string, maxResults int) *models.SearchResults {
	results := &models.SearchResults{Query: query}

	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		// Sponsored results carry the result--ad class
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		target := resolveDuckDuckGoLink(href)
		if title == "" || target == "" {
			return true
		}

		results.Results = append(results.Results, models.SearchResult{
			Title:   title,
			URL:     target,
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " "),
		})
		return len(results.Results) < maxResults
	})

	return results
}

// resolveDuckDuckGoLink unwraps the /l/?uddg= redirect used on result anchors
func resolveDuckDuckGoLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return u.String()
	}
	return ""
}
