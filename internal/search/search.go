// Package search provides the web-search capability used by the
// document answerer's escalation path.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

// Provider runs a web search, or fails with
// domain.ErrProviderUnavailable.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearxNG queries a SearxNG instance's JSON API.
type SearxNG struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// Option configures the SearxNG client.
type Option func(*SearxNG)

// WithMaxResults caps the number of returned results.
func WithMaxResults(n int) Option {
	return func(s *SearxNG) { s.maxResults = n }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(s *SearxNG) { s.httpClient = h }
}

// NewSearxNG creates a search client for the given instance URL.
func NewSearxNG(baseURL string, opts ...Option) *SearxNG {
	s := &SearxNG{baseURL: baseURL, maxResults: 5}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return s
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one query and returns up to maxResults hits.
func (s *SearxNG) Search(ctx context.Context, query string) ([]Result, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("safesearch", "0")

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search provider: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search provider returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrProviderUnavailable, err)
	}

	results := payload.Results
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results, nil
}

var _ Provider = (*SearxNG)(nil)
