// Package docs implements the documentation tools: reading pages, searching and
// recommending related content, on top of the awsdocs client.
package docs

// SearchResult is one ranked hit of a documentation search.
type SearchResult struct {
	// RankOrder is the 1-based relevance rank, lower is more relevant.
	RankOrder int    `json:"rank_order"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	// QueryID is assigned by the search service to the whole batch.
	QueryID string `json:"query_id"`
	// Context is a short snippet describing the page, nil when none is available.
	Context *string `json:"context"`
}

// RecommendationResult is a page related to the one the agent is reading.
type RecommendationResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Context *string `json:"context"`
}

func stringPtr(s string) *string {
	return &s
}
