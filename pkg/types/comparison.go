// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ComparisonResult is the output of the dual-entity comparator. When Error
// is set the remaining fields are empty and callers must treat the result
// as a failed analysis.
type ComparisonResult struct {
	// SubjectA is the first compared entity; always the first input name
	// after post-processing.
	SubjectA string `json:"pokemon_1,omitempty"`

	// SubjectB is the second compared entity.
	SubjectB string `json:"pokemon_2,omitempty"`

	Analysis  string `json:"analysis,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`

	// Outcome names the predicted winner.
	Outcome string `json:"winner,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the comparison carries an error instead of a result.
func (c ComparisonResult) Failed() bool {
	return c.Error != ""
}
