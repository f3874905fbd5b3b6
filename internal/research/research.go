// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research enriches looked-up entities with model-written details.
// The lookup stays the source of truth: enrichment may add details,
// research queries and analysis, never change attributes.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/pdiddy/pokerouter/internal/llm"
	"github.com/pdiddy/pokerouter/internal/parse"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// ToolName is the forced tool the researcher answers through.
const ToolName = "ResearchPokemon"

const system = `You are a Pokemon researcher. Work only from the data you are given. Report every stat, type and ability, then interpret them: strengths, type matchups, how the abilities are best used and a suitable battle role.`

var promptTmpl = template.Must(template.New("research").Parse(`Here is the data for {{.Name}}:
{{.Data}}

Analyze {{.Name}} from this data and return a research report.`))

var tool = llm.Tool{
	Name:        ToolName,
	Description: "Structured research report for one Pokemon",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":             map[string]any{"type": "string"},
			"pokemon_details":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"research_queries": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"analysis":         map[string]any{"type": "object", "description": "Optional free-form analysis"},
		},
		"required": []string{"name", "pokemon_details", "research_queries"},
	},
}

// Caller is the subset of *llm.Client the researcher needs.
type Caller interface {
	CallTool(ctx context.Context, system, prompt string, tool llm.Tool) (string, error)
}

// Claude enriches records with a forced tool call.
type Claude struct {
	LLM Caller
	Log *slog.Logger
}

// Research returns enrichment for rec, or nil, nil when the model output
// could not be recovered as structured data.
func (c *Claude) Research(ctx context.Context, rec types.EntityRecord) (*types.Research, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", rec.Name, err)
	}
	prompt, err := llm.Render(promptTmpl, struct{ Name, Data string }{rec.Name, string(data)})
	if err != nil {
		return nil, err
	}

	raw, err := c.LLM.CallTool(ctx, system, prompt, tool)
	if err != nil {
		return nil, fmt.Errorf("researching %s: %w", rec.Name, err)
	}

	var out types.Research
	strategy, err := parse.Decode(raw, &out)
	if errors.Is(err, parse.ErrUnstructured) {
		c.log().Warn("research output not structured", "name", rec.Name)
		return nil, nil
	}
	if err != nil {
		c.log().Warn("research output has wrong shape", "name", rec.Name, "strategy", strategy.String(), "error", err)
		return nil, nil
	}
	return &out, nil
}

func (c *Claude) log() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Apply merges enrichment into rec. Name, attributes, categories, traits,
// size and mass always come from rec. A nil enrichment returns rec as is.
func Apply(rec types.EntityRecord, r *types.Research) types.EntityRecord {
	if r == nil {
		return rec
	}
	if r.Details != nil {
		rec.Details = r.Details
	}
	if r.ResearchQueries != nil {
		rec.ResearchQueries = r.ResearchQueries
	}
	if len(r.Analysis) > 0 {
		rec.Analysis = r.Analysis
	}
	return rec
}
