// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/pokerouter/internal/llm"
	"github.com/pdiddy/pokerouter/pkg/types"
)

const summarySystem = `You answer questions from web search results. Use only the facts in the results, include specific figures and dates, cite source URLs, and say what the results do not cover.`

var summaryTmpl = template.Must(template.New("summarize").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Question: {{.Question}}

Search results:
{{range $i, $f := .Findings}}[{{inc $i}}] {{if $f.Title}}{{$f.Title}} {{end}}({{$f.URL}})
{{$f.Snippet}}

{{end}}Answer the question from these results.`))

// Completer is the subset of *llm.Client the summarizer needs.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Claude generates a final answer from findings.
type Claude struct {
	LLM Completer
}

// Summarize answers question from findings.
func (c *Claude) Summarize(ctx context.Context, question string, findings []types.SearchFinding) (string, error) {
	prompt, err := llm.Render(summaryTmpl, struct {
		Question string
		Findings []types.SearchFinding
	}{question, findings})
	if err != nil {
		return "", err
	}
	answer, err := c.LLM.Complete(ctx, summarySystem, prompt)
	if err != nil {
		return "", fmt.Errorf("generating final answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
