// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import (
	"fmt"

	"github.com/pdiddy/pokerouter/pkg/types"
)

// State is a step of request routing.
type State int

const (
	Start State = iota
	Classified
	Searching
	Researching
	Done
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Classified:
		return "classified"
	case Searching:
		return "searching"
	case Researching:
		return "researching"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// run accumulates the results of one request. It is owned by the goroutine
// handling the request; the research fan-out writes into its own slice and
// hands results back after the join.
type run struct {
	message        string
	classification types.ClassificationResult
	search         *types.SearchAnswer
	entities       []types.NamedEntity
	comparison     *types.ComparisonResult
	trace          []State
}

func (r *run) enter(s State) {
	r.trace = append(r.trace, s)
}
