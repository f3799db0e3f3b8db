package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const duckduckgoBaseURL = "https://api.duckduckgo.com"

// DuckDuckGoSearcher implements Searcher using the DuckDuckGo Instant Answer
// API. No API key is required.
type DuckDuckGoSearcher struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGoSearcher creates a searcher against the public DuckDuckGo API.
// baseURL overrides the endpoint (useful for testing) and defaults when empty.
func NewDuckDuckGoSearcher(baseURL string) *DuckDuckGoSearcher {
	if baseURL == "" {
		baseURL = duckduckgoBaseURL
	}
	return &DuckDuckGoSearcher{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// Search queries DuckDuckGo and returns (document, link) pairs in relevance
// order: the abstract first, then related topics.
func (s *DuckDuckGoSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&no_redirect=1", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	var results []SearchResult
	if parsed.AbstractText != "" && parsed.AbstractURL != "" {
		results = append(results, SearchResult{Content: parsed.AbstractText, Link: parsed.AbstractURL})
	}
	results = append(results, flattenTopics(parsed.RelatedTopics)...)
	return results, nil
}

// flattenTopics unwraps DuckDuckGo's nested topic groups into a flat ordered
// list, skipping entries without both text and a link.
func flattenTopics(topics []ddgTopic) []SearchResult {
	var out []SearchResult
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		if t.Text != "" && t.FirstURL != "" {
			out = append(out, SearchResult{Content: t.Text, Link: t.FirstURL})
		}
	}
	return out
}
