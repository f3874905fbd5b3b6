// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pokerouter service:
// the classification result, entity records, comparison results, search
// findings, and the response envelopes returned to callers.
package types

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical attribute keys. Every EntityRecord produced by a lookup carries
// exactly these six keys in BaseStats.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special_attack"
	StatSpecialDefense = "special_defense"
	StatSpeed          = "speed"
)

// StatKeys lists the canonical attribute keys in display order.
var StatKeys = []string{
	StatHP,
	StatAttack,
	StatDefense,
	StatSpecialAttack,
	StatSpecialDefense,
	StatSpeed,
}

// EntityRecord is the canonical structured view of one domain entity.
type EntityRecord struct {
	// Name is the lower-case entity name used for equality checks.
	Name string `json:"name" yaml:"name"`

	// BaseStats holds the six canonical attributes (see StatKeys).
	BaseStats map[string]int `json:"base_stats" yaml:"base_stats"`

	// Types lists the entity categories in source order.
	Types []string `json:"types" yaml:"types"`

	// Abilities lists the entity traits in source order.
	Abilities []string `json:"abilities" yaml:"abilities"`

	// Height is the size metric in metres.
	Height float64 `json:"height" yaml:"height"`

	// Weight is the mass metric in kilograms.
	Weight float64 `json:"weight" yaml:"weight"`

	// Details are free-text facts produced by the enrichment step.
	Details []string `json:"pokemon_details" yaml:"pokemon_details"`

	// ResearchQueries are follow-up topics suggested by the enrichment step.
	ResearchQueries []string `json:"research_queries,omitempty" yaml:"research_queries,omitempty"`

	// SpriteURL is the front sprite reported by the data source, if any.
	SpriteURL string `json:"sprite_url,omitempty" yaml:"sprite_url,omitempty"`

	// Analysis is an optional free-form analysis mapping from enrichment.
	Analysis map[string]any `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// HasAllStats reports whether BaseStats carries every canonical key.
func (e EntityRecord) HasAllStats() bool {
	for _, k := range StatKeys {
		if _, ok := e.BaseStats[k]; !ok {
			return false
		}
	}
	return len(e.BaseStats) == len(StatKeys)
}

// NormalizeName returns the lower-case, trimmed form used for equality.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DisplayName returns the title-cased key used in chat responses
// (e.g. "pikachu" -> "Pikachu"). A Caser is stateful, so one is built per call.
func DisplayName(name string) string {
	return cases.Title(language.Und).String(NormalizeName(name))
}

// SameName reports whether two names are equal ignoring case and
// surrounding whitespace.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// Research is the structured output of the enrichment capability for one
// entity.
type Research struct {
	Name            string         `json:"name"`
	Details         []string       `json:"pokemon_details"`
	ResearchQueries []string       `json:"research_queries"`
	Analysis        map[string]any `json:"analysis,omitempty"`
}
