// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup fetches entity records from a structured data source and
// classifies failures as not-found, transient, or malformed.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/pokerouter/internal/capability"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// ErrNotFound matches every *Error with Kind NotFound via errors.Is.
var ErrNotFound = errors.New("entity not found")

// FailureKind classifies a lookup failure.
type FailureKind int

const (
	NotFound FailureKind = iota
	Transient
	Malformed
)

func (k FailureKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Transient:
		return "transient"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("failure(%d)", int(k))
}

// Error is a classified lookup failure for one entity name.
type Error struct {
	Name string
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == Malformed {
		return fmt.Sprintf("Failed to process data for %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("Failed to fetch data for %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) true for not-found failures.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == NotFound
}

// Transient reports whether retrying later could succeed. Malformed upstream
// payloads count as transient.
func (e *Error) Transient() bool {
	return e.Kind != NotFound
}

func notFound(name string, cause error) *Error {
	return &Error{Name: name, Kind: NotFound, Err: cause}
}

// NotFoundError returns the not-found failure for name.
func NotFoundError(name string) error {
	return notFound(name, ErrNotFound)
}

// Chain tries each source in order and moves to the next only when the
// current one reports not-found.
type Chain []capability.EntitySource

// Fetch returns the first record found.
func (c Chain) Fetch(ctx context.Context, name string) (*types.EntityRecord, error) {
	var last error = NotFoundError(name)
	for _, src := range c {
		rec, err := src.Fetch(ctx, name)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		last = err
	}
	return nil, last
}
