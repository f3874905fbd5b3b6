// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pokerouter/internal/httputil"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIURL = "https://api.tavily.com/search"

const defaultMaxResults = 5

// Tavily queries the Tavily search API.
type Tavily struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	HTTP       *httputil.Client
}

// NewTavily builds a Tavily searcher from cfg.
func NewTavily(cfg types.SearchConfig) *Tavily {
	return &Tavily{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		MaxResults: cfg.MaxResults,
		HTTP:       httputil.NewClient(cfg.HTTPConfig),
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []types.SearchHit `json:"results"`
}

// Search returns hits for query in rank order.
func (b *Tavily) Search(ctx context.Context, query string) ([]types.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	maxResults := b.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	body, err := json.Marshal(tavilyRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := b.BaseURL
	if endpoint == "" {
		endpoint = tavilyAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}

	hc := b.HTTP
	if hc == nil {
		hc = &httputil.Client{}
	}
	resp, err := hc.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Tavily API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	hits := tr.Results[:0]
	for _, h := range tr.Results {
		if h.URL == "" && h.Content == "" {
			continue
		}
		hits = append(hits, h)
	}
	return hits, nil
}
