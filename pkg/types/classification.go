// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MaxEntities is the maximum number of entity names a request resolves.
// Names beyond this are dropped, order preserved.
const MaxEntities = 2

// ClassificationResult is the output of the classification step. It is
// created once per request and only mutated by the entity-name backfill.
type ClassificationResult struct {
	// Answer is the classifier's direct answer, or a delegation note for
	// domain and search queries.
	Answer string `json:"answer"`

	// Reasoning explains how the classifier decided to route the request.
	Reasoning string `json:"reasoning"`

	// NeedsSearch routes the request through the web search branch.
	NeedsSearch bool `json:"needs_search"`

	// IsDomainQuery routes the request through the entity research branch.
	IsDomainQuery bool `json:"is_pokemon_query"`

	// EntityNames are the extracted entity names (0..MaxEntities).
	EntityNames []string `json:"pokemon_names,omitempty"`

	// SearchQueries are classifier-suggested refinements. They are recorded
	// but the original request text is what gets searched.
	SearchQueries []string `json:"search_queries,omitempty"`

	// Error is set when the classifier produced no structured result.
	Error string `json:"error,omitempty"`
}
