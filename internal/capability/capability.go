// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capability declares the external capabilities the router depends
// on. Each Kind has exactly one interface; a Set binds one implementation
// per kind at construction time.
package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/pokerouter/pkg/types"
)

// Kind enumerates the capability kinds.
type Kind int

const (
	Classify Kind = iota
	Search
	Summarize
	Lookup
	Research
	Analyze
)

// Kinds lists every capability kind in declaration order.
var Kinds = []Kind{Classify, Search, Summarize, Lookup, Research, Analyze}

func (k Kind) String() string {
	switch k {
	case Classify:
		return "classify"
	case Search:
		return "search"
	case Summarize:
		return "summarize"
	case Lookup:
		return "lookup"
	case Research:
		return "research"
	case Analyze:
		return "analyze"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Classifier routes a request. A nil result with a nil error means the
// capability produced no structured result.
type Classifier interface {
	Classify(ctx context.Context, message string) (*types.ClassificationResult, error)
}

// Searcher runs a web search and returns hits in rank order.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SearchHit, error)
}

// Summarizer generates a final answer to question from search findings.
type Summarizer interface {
	Summarize(ctx context.Context, question string, findings []types.SearchFinding) (string, error)
}

// EntitySource fetches one entity by name.
type EntitySource interface {
	Fetch(ctx context.Context, name string) (*types.EntityRecord, error)
}

// Researcher enriches a looked-up entity with free-text details.
type Researcher interface {
	Research(ctx context.Context, record types.EntityRecord) (*types.Research, error)
}

// Analyst compares two entities. A nil result with a nil error means the
// capability produced no structured result.
type Analyst interface {
	Analyze(ctx context.Context, a, b types.EntityRecord) (*types.ComparisonResult, error)
}

// Set holds one implementation per kind.
type Set struct {
	Classifier Classifier
	Searcher   Searcher
	Summarizer Summarizer
	Lookup     EntitySource
	Researcher Researcher
	Analyst    Analyst

	// Timeout bounds every capability call. Zero means no bound.
	Timeout time.Duration
}

// Validate reports every kind without an implementation.
func (s Set) Validate() error {
	var missing []string
	for _, k := range Kinds {
		if !s.has(k) {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing capabilities: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s Set) has(k Kind) bool {
	switch k {
	case Classify:
		return s.Classifier != nil
	case Search:
		return s.Searcher != nil
	case Summarize:
		return s.Summarizer != nil
	case Lookup:
		return s.Lookup != nil
	case Research:
		return s.Researcher != nil
	case Analyze:
		return s.Analyst != nil
	}
	return false
}

// Error wraps a failed capability call.
type Error struct {
	Kind      Kind
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// transientError lets implementations mark their own errors as transient.
type transientError interface {
	Transient() bool
}

// IsTransient reports whether err was classified as transient.
func IsTransient(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Transient
	}
	var te transientError
	return errors.As(err, &te) && te.Transient()
}

// Invoke calls fn under the per-call timeout and wraps any failure in an
// *Error tagged with kind. Timeouts are transient.
func Invoke[T any](ctx context.Context, kind Kind, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	v, err := fn(ctx)
	if err == nil {
		return v, nil
	}
	var zero T
	transient := errors.Is(err, context.DeadlineExceeded)
	var te transientError
	if errors.As(err, &te) {
		transient = transient || te.Transient()
	}
	return zero, &Error{Kind: kind, Transient: transient, Err: err}
}
