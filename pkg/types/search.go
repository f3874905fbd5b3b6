// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SnippetLimit is the maximum snippet length, in characters, before a
// finding's snippet is truncated and suffixed with an ellipsis.
const SnippetLimit = 200

// SearchHit is one raw result from the web search capability.
type SearchHit struct {
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SearchFinding is one normalized search hit returned to callers.
type SearchFinding struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchAnswer is the output of the search branch: a final answer generated
// from the findings, plus the findings themselves in rank order.
type SearchAnswer struct {
	Answer  string          `json:"answer"`
	Sources []SearchFinding `json:"sources"`
}
