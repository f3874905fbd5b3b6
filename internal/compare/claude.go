// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"github.com/pdiddy/pokerouter/internal/llm"
	"github.com/pdiddy/pokerouter/internal/parse"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// ToolName is the forced tool the analyst answers through.
const ToolName = "PokemonExpertAnalystAgent"

const analystSystem = `You are a Pokemon battle analyst. Compare only the two Pokemon you are given, using their stats, types and abilities. Do not introduce any other Pokemon. The winner must be one of the two names exactly as given.`

var analystTmpl = template.Must(template.New("analyze").Parse(`First Pokemon: {{.A.Name}}
{{.DataA}}

Second Pokemon: {{.B.Name}}
{{.DataB}}

Analyze a battle between {{.A.Name}} and {{.B.Name}}. Put {{.A.Name}} in pokemon_1 and {{.B.Name}} in pokemon_2.`))

var analystTool = llm.Tool{
	Name:        ToolName,
	Description: "Battle analysis of exactly two Pokemon",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pokemon_1": map[string]any{"type": "string", "description": "Name of the first Pokemon"},
			"pokemon_2": map[string]any{"type": "string", "description": "Name of the second Pokemon"},
			"analysis":  map[string]any{"type": "string"},
			"reasoning": map[string]any{"type": "string"},
			"winner":    map[string]any{"type": "string", "description": "Name of the predicted winner"},
		},
		"required": []string{"pokemon_1", "pokemon_2", "analysis", "reasoning", "winner"},
	},
}

// Caller is the subset of *llm.Client the analyst needs.
type Caller interface {
	CallTool(ctx context.Context, system, prompt string, tool llm.Tool) (string, error)
}

// Claude is an Analyst backed by a forced tool call.
type Claude struct {
	LLM Caller
}

// Analyze returns the model's comparison, or nil, nil when its output could
// not be recovered as structured data.
func (c *Claude) Analyze(ctx context.Context, a, b types.EntityRecord) (*types.ComparisonResult, error) {
	dataA, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", a.Name, err)
	}
	dataB, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", b.Name, err)
	}
	prompt, err := llm.Render(analystTmpl, struct {
		A, B         types.EntityRecord
		DataA, DataB string
	}{a, b, string(dataA), string(dataB)})
	if err != nil {
		return nil, err
	}

	raw, err := c.LLM.CallTool(ctx, analystSystem, prompt, analystTool)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s vs %s: %w", a.Name, b.Name, err)
	}

	var out types.ComparisonResult
	if _, err := parse.Decode(raw, &out); err != nil {
		if errors.Is(err, parse.ErrUnstructured) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	if out == (types.ComparisonResult{}) {
		return nil, nil
	}
	return &out, nil
}
