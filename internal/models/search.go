package models

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchResults is a provider response. Summary is set by providers that
// answer with grounded text (Gemini) in addition to source links.
type SearchResults struct {
	Query   string         `json:"query"`
	Summary string         `json:"summary,omitempty"`
	Results []SearchResult `json:"results"`
}

// Empty reports whether the response carries no usable content
func (r *SearchResults) Empty() bool {
	return r == nil || (r.Summary == "" && len(r.Results) == 0)
}
