// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pokerouter/internal/httputil"
	"github.com/pdiddy/pokerouter/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// --- fakes ---

type fakeSearcher struct {
	hits  []types.SearchHit
	err   error
	query string
}

func (f *fakeSearcher) Search(_ context.Context, q string) ([]types.SearchHit, error) {
	f.query = q
	return f.hits, f.err
}

type fakeSummarizer struct {
	answer   string
	err      error
	findings []types.SearchFinding
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, findings []types.SearchFinding) (string, error) {
	f.findings = findings
	return f.answer, f.err
}

type fakeCompleter struct {
	out    string
	err    error
	system string
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.out, f.err
}

// --- Truncate / Findings ---

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exactly limit", strings.Repeat("a", 200), strings.Repeat("a", 200)},
		{"limit plus one", strings.Repeat("a", 201), strings.Repeat("a", 200) + "..."},
		{"multibyte counts characters", strings.Repeat("é", 201), strings.Repeat("é", 200) + "..."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, types.SnippetLimit))
		})
	}
}

func TestFindings(t *testing.T) {
	hits := []types.SearchHit{
		{Title: "One", URL: "https://a.test", Content: "short"},
		{URL: "https://b.test", Content: strings.Repeat("x", 250)},
	}
	got := Findings(hits)
	require.Len(t, got, 2)
	assert.Equal(t, types.SearchFinding{Title: "One", URL: "https://a.test", Snippet: "short"}, got[0])
	assert.Equal(t, "", got[1].Title)
	assert.Len(t, got[1].Snippet, 203)
	assert.True(t, strings.HasSuffix(got[1].Snippet, "..."))
}

// --- Answer ---

func TestAnswer(t *testing.T) {
	t.Run("summarizes findings", func(t *testing.T) {
		s := &fakeSearcher{hits: []types.SearchHit{{Title: "Weather", URL: "https://w.test", Content: "sunny"}}}
		sum := &fakeSummarizer{answer: "It is sunny."}

		got := Answer(context.Background(), s, sum, "weather in Paris today", time.Second)
		assert.Equal(t, "weather in Paris today", s.query)
		assert.Equal(t, "It is sunny.", got.Answer)
		assert.Equal(t, []types.SearchFinding{{Title: "Weather", URL: "https://w.test", Snippet: "sunny"}}, got.Sources)
		assert.Equal(t, got.Sources, sum.findings)
	})

	t.Run("no hits", func(t *testing.T) {
		sum := &fakeSummarizer{}
		got := Answer(context.Background(), &fakeSearcher{}, sum, "q", 0)
		assert.Equal(t, NoResults, got.Answer)
		assert.NotNil(t, got.Sources)
		assert.Empty(t, got.Sources)
		assert.Nil(t, sum.findings)
	})

	t.Run("search error", func(t *testing.T) {
		got := Answer(context.Background(), &fakeSearcher{err: errors.New("quota exceeded")}, &fakeSummarizer{}, "q", 0)
		assert.True(t, strings.HasPrefix(got.Answer, "Error executing search: "))
		assert.Contains(t, got.Answer, "quota exceeded")
		assert.Empty(t, got.Sources)
	})

	t.Run("summarizer error", func(t *testing.T) {
		s := &fakeSearcher{hits: []types.SearchHit{{URL: "https://w.test", Content: "c"}}}
		got := Answer(context.Background(), s, &fakeSummarizer{err: errors.New("model down")}, "q", 0)
		assert.True(t, strings.HasPrefix(got.Answer, "Error executing search: "))
		assert.Contains(t, got.Answer, "model down")
		assert.Empty(t, got.Sources)
	})
}

// --- Tavily ---

func withTavily(t *testing.T, h http.HandlerFunc) *Tavily {
	t.Helper()
	ts := httptest.NewServer(h)
	old := tavilyAPIURL
	tavilyAPIURL = ts.URL
	t.Cleanup(func() {
		tavilyAPIURL = old
		ts.Close()
	})
	return &Tavily{APIKey: "tvly-test", HTTP: &httputil.Client{HTTP: ts.Client(), MaxRetries: 1}}
}

func TestTavilySearch(t *testing.T) {
	var got tavilyRequest
	var auth string
	b := withTavily(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"results":[
			{"title":"A","url":"https://a.test","content":"first","score":0.9},
			{"title":"","url":"","content":""},
			{"url":"https://b.test","content":"second"}
		]}`)
	})

	hits, err := b.Search(context.Background(), "  who won the match  ")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tvly-test", auth)
	assert.Equal(t, tavilyRequest{Query: "who won the match", MaxResults: defaultMaxResults}, got)
	require.Len(t, hits, 2)
	assert.Equal(t, "A", hits[0].Title)
	assert.InDelta(t, 0.9, hits[0].Score, 1e-9)
	assert.Equal(t, "https://b.test", hits[1].URL)
}

func TestTavilySearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"bad key"}`, "HTTP 401"},
		{"rate limited", http.StatusTooManyRequests, ``, "HTTP 429"},
		{"malformed", http.StatusOK, `{"results":`, "parsing Tavily response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := withTavily(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := b.Search(context.Background(), "q")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTavilyEmptyQuery(t *testing.T) {
	_, err := (&Tavily{}).Search(context.Background(), "   ")
	assert.Error(t, err)
}

// --- Claude summarizer ---

func TestClaudeSummarize(t *testing.T) {
	f := &fakeCompleter{out: "  Paris is sunny.\n"}
	findings := []types.SearchFinding{
		{Title: "Forecast", URL: "https://w.test", Snippet: "sunny"},
		{URL: "https://x.test", Snippet: "warm"},
	}

	got, err := (&Claude{LLM: f}).Summarize(context.Background(), "weather in Paris?", findings)
	require.NoError(t, err)
	assert.Equal(t, "Paris is sunny.", got)
	assert.Contains(t, f.prompt, "Question: weather in Paris?")
	assert.Contains(t, f.prompt, "[1] Forecast (https://w.test)\nsunny")
	assert.Contains(t, f.prompt, "[2] (https://x.test)\nwarm")
	assert.Equal(t, summarySystem, f.system)

	_, err = (&Claude{LLM: &fakeCompleter{err: errors.New("down")}}).Summarize(context.Background(), "q", findings)
	assert.ErrorContains(t, err, "generating final answer")
}
