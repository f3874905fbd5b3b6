// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ComparisonKey is the fixed key under which a comparison result is placed
// in entity-bearing chat responses.
const ComparisonKey = "battle_analysis"

// NamedEntity pairs a resolved entity with its display key.
type NamedEntity struct {
	Key    string
	Record EntityRecord
}

// Envelope is the chat response body when no entity was resolved.
type Envelope struct {
	Classification ClassificationResult `json:"supervisor_result"`
	Research       map[string]any       `json:"pokemon_research"`
	Comparison     *ComparisonResult    `json:"battle_analysis"`
	FinalAnswer    *SearchAnswer        `json:"final_answer"`
}

// ChatResponse is the externally visible chat response. Exactly one of the
// two shapes is populated: Entities (with optional Comparison) when at least
// one entity was resolved, otherwise Envelope.
type ChatResponse struct {
	Entities   []NamedEntity
	Comparison *ComparisonResult
	Envelope   *Envelope
}

// HasEntities reports whether the response carries resolved entities.
func (r ChatResponse) HasEntities() bool {
	return len(r.Entities) > 0
}

// Entity returns the record stored under key, if present.
func (r ChatResponse) Entity(key string) (EntityRecord, bool) {
	for _, e := range r.Entities {
		if e.Key == key {
			return e.Record, true
		}
	}
	return EntityRecord{}, false
}

// MarshalJSON renders the entity shape as a flat object keyed by display
// name (in resolution order) and the envelope shape as {"response": ...}.
func (r ChatResponse) MarshalJSON() ([]byte, error) {
	if !r.HasEntities() {
		var env Envelope
		if r.Envelope != nil {
			env = *r.Envelope
		}
		if env.Research == nil {
			env.Research = map[string]any{}
		}
		return json.Marshal(struct {
			Response Envelope `json:"response"`
		}{Response: env})
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entities {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, e.Key, e.Record); err != nil {
			return nil, err
		}
	}
	if r.Comparison != nil {
		buf.WriteByte(',')
		if err := writeMember(&buf, ComparisonKey, r.Comparison); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("marshaling key %q: %w", key, err)
	}
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// CompareResponse is the response of the dedicated two-entity compare path.
type CompareResponse struct {
	First      EntityRecord     `json:"pokemon1"`
	Second     EntityRecord     `json:"pokemon2"`
	Comparison ComparisonResult `json:"battle_analysis"`
}
