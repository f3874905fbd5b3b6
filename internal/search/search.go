// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs web searches and turns hits into findings that a
// summarizer can answer from.
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// Fixed answers of the search branch.
const (
	NoResults   = "No results found."
	errorPrefix = "Error executing search: "
	ellipsis    = "..."
)

// Findings normalizes hits into findings in rank order. Snippets longer
// than types.SnippetLimit characters are truncated and suffixed with "...".
func Findings(hits []types.SearchHit) []types.SearchFinding {
	out := make([]types.SearchFinding, 0, len(hits))
	for _, h := range hits {
		out = append(out, types.SearchFinding{
			Title:   h.Title,
			URL:     h.URL,
			Snippet: Truncate(h.Content, types.SnippetLimit),
		})
	}
	return out
}

// Truncate shortens s to limit characters plus an ellipsis. Strings of at
// most limit characters are returned unchanged.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == limit {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString(ellipsis)
	return b.String()
}

// ErrorAnswer is the answer reported when any step of the search branch
// fails.
func ErrorAnswer(err error) types.SearchAnswer {
	return types.SearchAnswer{Answer: errorPrefix + err.Error(), Sources: []types.SearchFinding{}}
}

// Answer runs the search branch for question: search, normalize, then
// summarize, each call bounded by timeout. Failures never escape; they are
// folded into the answer text.
func Answer(ctx context.Context, s capability.Searcher, sum capability.Summarizer, question string, timeout time.Duration) types.SearchAnswer {
	hits, err := capability.Invoke(ctx, capability.Search, timeout, func(ctx context.Context) ([]types.SearchHit, error) {
		return s.Search(ctx, question)
	})
	if err != nil {
		return ErrorAnswer(err)
	}
	if len(hits) == 0 {
		return types.SearchAnswer{Answer: NoResults, Sources: []types.SearchFinding{}}
	}

	findings := Findings(hits)
	answer, err := capability.Invoke(ctx, capability.Summarize, timeout, func(ctx context.Context) (string, error) {
		return sum.Summarize(ctx, question, findings)
	})
	if err != nil {
		return ErrorAnswer(err)
	}
	return types.SearchAnswer{Answer: answer, Sources: findings}
}
