// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify implements the request classifier on the Claude API.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/pdiddy/pokerouter/internal/llm"
	"github.com/pdiddy/pokerouter/internal/parse"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// ToolName is the forced tool the classifier answers through.
const ToolName = "SupervisorAgent"

var systemTmpl = template.Must(template.New("classify").Parse(`You route user questions. Current time: {{.Now}}.

1. For general knowledge questions you can answer, put the answer in "answer" and leave "search_queries" empty.
2. For any question about Pokemon, do not answer it. Set "is_pokemon_query" to true, list up to two Pokemon names from the question in "pokemon_names", and say in "answer" that the question is delegated to research.
3. For questions that need current or specific information you do not know, set "needs_search" to true and give three or four short search queries in "search_queries".
Always explain the routing decision in "reasoning".`))

var tool = llm.Tool{
	Name:        ToolName,
	Description: "Classify a user question and decide how it should be answered",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":           map[string]any{"type": "string", "description": "Direct answer, or a note that the question is delegated"},
			"reasoning":        map[string]any{"type": "string", "description": "How the question should be processed"},
			"needs_search":     map[string]any{"type": "boolean"},
			"is_pokemon_query": map[string]any{"type": "boolean"},
			"pokemon_names": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": types.MaxEntities,
			},
			"search_queries": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"answer", "reasoning", "needs_search", "is_pokemon_query"},
	},
}

// Caller is the subset of *llm.Client the classifier needs.
type Caller interface {
	CallTool(ctx context.Context, system, prompt string, tool llm.Tool) (string, error)
}

// Claude classifies requests with a forced tool call.
type Claude struct {
	LLM Caller
	Log *slog.Logger

	// Now is overridden in tests.
	Now func() time.Time
}

// wire accepts the flat tool shape as well as a nested "reflection" object
// some models emit.
type wire struct {
	types.ClassificationResult
	Reflection *struct {
		Reasoning string `json:"reasoning"`
		Answer    string `json:"answer"`
	} `json:"reflection,omitempty"`
}

// Classify asks the model to route message. It returns nil, nil when the
// model output could not be recovered as structured data.
func (c *Claude) Classify(ctx context.Context, message string) (*types.ClassificationResult, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	system, err := llm.Render(systemTmpl, struct{ Now string }{now().Format("2006-01-02 15:04:05")})
	if err != nil {
		return nil, err
	}

	raw, err := c.LLM.CallTool(ctx, system, message, tool)
	if err != nil {
		return nil, fmt.Errorf("classifying request: %w", err)
	}

	var w wire
	strategy, err := parse.Decode(raw, &w)
	if errors.Is(err, parse.ErrUnstructured) {
		c.log().Warn("classifier output not structured", "raw", raw)
		return nil, nil
	}
	if err != nil {
		c.log().Warn("classifier output has wrong shape", "strategy", strategy.String(), "error", err)
		return nil, nil
	}

	res := w.ClassificationResult
	if w.Reflection != nil {
		if res.Answer == "" {
			res.Answer = w.Reflection.Answer
		}
		if res.Reasoning == "" {
			res.Reasoning = w.Reflection.Reasoning
		}
	}
	c.log().Debug("classified",
		"strategy", strategy.String(),
		"needs_search", res.NeedsSearch,
		"is_domain_query", res.IsDomainQuery,
		"names", res.EntityNames,
	)
	return &res, nil
}

func (c *Claude) log() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
