// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare runs the two-entity comparison and enforces that the
// result is labelled with the entities that were actually compared.
package compare

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// FailedAnalysis is the error carried by a comparison that produced no
// result.
const FailedAnalysis = "Failed to analyze battle"

// ErrUnnamed is returned when either input record has no name.
var ErrUnnamed = errors.New("both entities need a name to be compared")

// Comparator wraps an Analyst with identity correction.
type Comparator struct {
	Analyst capability.Analyst
	Timeout time.Duration
	Log     *slog.Logger
}

// Compare analyzes a against b. Subjects are forced to the input names in
// input order. Capability failure or an empty result yields a result with
// Error set; the only returned error is ErrUnnamed.
func (c *Comparator) Compare(ctx context.Context, a, b types.EntityRecord) (types.ComparisonResult, error) {
	if a.Name == "" || b.Name == "" {
		return types.ComparisonResult{}, ErrUnnamed
	}

	res, err := capability.Invoke(ctx, capability.Analyze, c.Timeout, func(ctx context.Context) (*types.ComparisonResult, error) {
		return c.Analyst.Analyze(ctx, a, b)
	})
	if err != nil {
		c.log().Warn("comparison failed", "a", a.Name, "b", b.Name, "transient", capability.IsTransient(err), "error", err)
		return types.ComparisonResult{Error: FailedAnalysis}, nil
	}
	if res == nil {
		c.log().Warn("comparison produced no result", "a", a.Name, "b", b.Name)
		return types.ComparisonResult{Error: FailedAnalysis}, nil
	}

	out := *res
	out.Error = ""
	c.correct(&out, a.Name, b.Name)
	return out, nil
}

// correct rewrites mislabelled subjects and normalizes the outcome. An
// outcome naming neither subject is kept verbatim and logged.
func (c *Comparator) correct(r *types.ComparisonResult, a, b string) {
	if !types.SameName(r.SubjectA, a) {
		c.log().Warn("comparison relabelled subject", "slot", "a", "got", r.SubjectA, "want", a)
		r.SubjectA = a
	}
	if !types.SameName(r.SubjectB, b) {
		c.log().Warn("comparison relabelled subject", "slot", "b", "got", r.SubjectB, "want", b)
		r.SubjectB = b
	}

	switch {
	case types.SameName(r.Outcome, a):
		r.Outcome = a
	case types.SameName(r.Outcome, b):
		r.Outcome = b
	default:
		c.log().Warn("comparison outcome names neither subject", "outcome", r.Outcome, "a", a, "b", b)
	}
}

func (c *Comparator) log() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
