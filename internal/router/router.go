// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package router classifies a request, runs the resolution branches it
// calls for, and assembles one response.
//
// A request moves through Start, Classified, then zero or more of Searching
// and Researching, and ends in Done. Classification runs exactly once. The
// search and research branches are independent: both may run for the same
// request, and a failure in one never aborts the other.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/internal/compare"
	"github.com/pdiddy/pokerouter/internal/logging"
	"github.com/pdiddy/pokerouter/internal/lookup"
	"github.com/pdiddy/pokerouter/internal/research"
	"github.com/pdiddy/pokerouter/internal/search"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// FailedClassification is the error recorded when the classifier produced
// no structured result.
const FailedClassification = "Failed to process query"

// Router routes requests over a fixed capability set. It holds no
// per-request state and is safe for concurrent use.
type Router struct {
	caps       capability.Set
	comparator *compare.Comparator
	log        *slog.Logger
}

// New validates caps and returns a Router.
func New(caps capability.Set, log *slog.Logger) (*Router, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Router{
		caps:       caps,
		comparator: &compare.Comparator{Analyst: caps.Analyst, Timeout: caps.Timeout, Log: log},
		log:        log,
	}, nil
}

// Route answers message. The only returned error is a classifier failure;
// every later failure degrades into the response.
func (rt *Router) Route(ctx context.Context, message string) (*types.ChatResponse, error) {
	r, err := rt.route(ctx, message)
	if err != nil {
		return nil, err
	}
	return assemble(r), nil
}

func (rt *Router) route(ctx context.Context, message string) (*run, error) {
	log := logging.ForRequest(ctx, rt.log)
	r := &run{message: message}
	r.enter(Start)

	cls, err := capability.Invoke(ctx, capability.Classify, rt.caps.Timeout, func(ctx context.Context) (*types.ClassificationResult, error) {
		return rt.caps.Classifier.Classify(ctx, message)
	})
	if err != nil {
		return nil, fmt.Errorf("classifying request: %w", err)
	}
	if cls == nil {
		log.Warn("classifier returned no result")
		r.classification = types.ClassificationResult{Error: FailedClassification}
		r.enter(Done)
		return r, nil
	}
	r.classification = *cls
	r.enter(Classified)

	names := entityNames(&r.classification, message)
	log.Info("classified",
		"needs_search", r.classification.NeedsSearch,
		"is_domain_query", r.classification.IsDomainQuery,
		"names", names,
	)

	if r.classification.NeedsSearch {
		r.enter(Searching)
		answer := search.Answer(ctx, rt.caps.Searcher, rt.caps.Summarizer, message, rt.caps.Timeout)
		r.search = &answer
		log.Debug("search finished", "sources", len(answer.Sources))
	}

	if r.classification.IsDomainQuery {
		r.enter(Researching)
		r.entities = rt.resolve(ctx, log, names)
		if len(r.entities) == types.MaxEntities {
			cmp, err := rt.comparator.Compare(ctx, r.entities[0].Record, r.entities[1].Record)
			if err != nil {
				log.Warn("comparison skipped", "error", err)
			} else {
				r.comparison = &cmp
			}
		}
		log.Info("research finished", "requested", len(names), "resolved", len(r.entities))
	}

	r.enter(Done)
	return r, nil
}

// resolve looks up and enriches names concurrently. Failed lookups are
// dropped; the rest keep the order of names.
func (rt *Router) resolve(ctx context.Context, log *slog.Logger, names []string) []types.NamedEntity {
	records := make([]*types.EntityRecord, len(names))

	var g errgroup.Group
	g.SetLimit(types.MaxEntities)
	for i, name := range names {
		g.Go(func() error {
			rec, err := rt.fetch(ctx, log, name)
			if err != nil {
				log.Warn("entity skipped", "name", name, "not_found", errors.Is(err, lookup.ErrNotFound), "error", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	g.Wait()

	out := make([]types.NamedEntity, 0, len(names))
	for i, rec := range records {
		if rec != nil {
			out = append(out, types.NamedEntity{Key: types.DisplayName(names[i]), Record: *rec})
		}
	}
	return out
}

// fetch looks up name and enriches the record. Only the lookup can fail;
// enrichment failure leaves the record as looked up.
func (rt *Router) fetch(ctx context.Context, log *slog.Logger, name string) (*types.EntityRecord, error) {
	rec, err := capability.Invoke(ctx, capability.Lookup, rt.caps.Timeout, func(ctx context.Context) (*types.EntityRecord, error) {
		return rt.caps.Lookup.Fetch(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	enrichment, err := capability.Invoke(ctx, capability.Research, rt.caps.Timeout, func(ctx context.Context) (*types.Research, error) {
		return rt.caps.Researcher.Research(ctx, *rec)
	})
	switch {
	case err != nil:
		log.Warn("enrichment failed", "name", rec.Name, "transient", capability.IsTransient(err), "error", err)
	case enrichment == nil:
		log.Warn("enrichment produced no result", "name", rec.Name)
	}
	merged := research.Apply(*rec, enrichment)
	return &merged, nil
}

// LookupFailure reports that one of the explicitly named entities of a
// compare request could not be fetched.
type LookupFailure struct {
	Name string
	Err  error
}

func (e *LookupFailure) Error() string {
	var le *lookup.Error
	if errors.As(e.Err, &le) {
		return le.Error()
	}
	return fmt.Sprintf("Failed to fetch data for %s: %v", e.Name, e.Err)
}

func (e *LookupFailure) Unwrap() error { return e.Err }

// Compare fetches both entities concurrently, then compares them. Unlike
// Route, a failed lookup fails the whole call with a *LookupFailure naming
// the first entity (in argument order) that could not be fetched.
func (rt *Router) Compare(ctx context.Context, first, second string) (*types.CompareResponse, error) {
	log := logging.ForRequest(ctx, rt.log)
	names := [types.MaxEntities]string{first, second}
	var records [types.MaxEntities]*types.EntityRecord
	var errs [types.MaxEntities]error

	var g errgroup.Group
	g.SetLimit(types.MaxEntities)
	for i, name := range names {
		g.Go(func() error {
			records[i], errs[i] = rt.fetch(ctx, log, name)
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &LookupFailure{Name: names[i], Err: err}
		}
	}

	cmp, err := rt.comparator.Compare(ctx, *records[0], *records[1])
	if err != nil {
		return nil, fmt.Errorf("comparing %s and %s: %w", first, second, err)
	}
	log.Info("compared", "first", first, "second", second, "outcome", cmp.Outcome, "failed", cmp.Failed())
	return &types.CompareResponse{First: *records[0], Second: *records[1], Comparison: cmp}, nil
}

// Trace runs message and returns the visited states. It is used by the
// CLI's verbose mode.
func (rt *Router) Trace(ctx context.Context, message string) (*types.ChatResponse, []State, error) {
	start := time.Now()
	r, err := rt.route(ctx, message)
	if err != nil {
		return nil, nil, err
	}
	rt.log.Debug("routed", "states", len(r.trace), "elapsed", time.Since(start))
	return assemble(r), r.trace, nil
}
