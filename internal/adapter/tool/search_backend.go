package tool

import (
	"context"
	"time"
)

// SearchBackend abstracts a web search engine.
type SearchBackend interface {
	// Search performs one logical search and returns deduplicated results,
	// at most req.Limit of them, in backend order.
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	// Name returns the backend identifier (e.g. "searxng").
	Name() string
}

// SearchRequest is the normalized, per-invocation search input.
type SearchRequest struct {
	Query      string
	Limit      int
	Categories string
	TimeRange  string
	Timeout    time.Duration // per attempt
}

// SearchResult represents a single search result.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Engine  string `json:"engine"`
}

// SearchResponse is the stable result shape returned to callers.
// Error is set only when the search did not succeed.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
	Error   string         `json:"error,omitempty"`
}
