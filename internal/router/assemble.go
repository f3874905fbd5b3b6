// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import "github.com/pdiddy/pokerouter/pkg/types"

// assemble builds the response for a finished run. Resolved entities take
// precedence: when at least one exists the response carries only the
// entities and the comparison, otherwise it wraps the classification and
// the search answer.
func assemble(r *run) *types.ChatResponse {
	if len(r.entities) > 0 {
		return &types.ChatResponse{
			Entities:   r.entities,
			Comparison: r.comparison,
		}
	}
	return &types.ChatResponse{
		Envelope: &types.Envelope{
			Classification: r.classification,
			Research:       map[string]any{},
			FinalAnswer:    r.search,
		},
	}
}
