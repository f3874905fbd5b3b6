// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pokerouter/pkg/types"
)

var capitalized = regexp.MustCompile(`\b([A-Z][a-z]+)\b`)

// stopWords are capitalized words that start questions and are never names.
var stopWords = map[string]bool{
	"The": true, "And": true, "But": true, "For": true, "With": true, "About": true,
	"What": true, "Who": true, "How": true, "When": true, "Where": true, "Why": true,
}

// ExtractNames returns capitalized words of message that are not stop
// words, in order of appearance.
func ExtractNames(message string) []string {
	var out []string
	for _, m := range capitalized.FindAllStringSubmatch(message, -1) {
		if !stopWords[m[1]] {
			out = append(out, m[1])
		}
	}
	return out
}

// NormalizeNames trims names, drops empties and case-insensitive
// duplicates, and keeps at most types.MaxEntities in first-seen order.
func NormalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, types.MaxEntities)
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := types.NormalizeName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
		if len(out) == types.MaxEntities {
			break
		}
	}
	return out
}

// entityNames returns the names the research branch resolves. When a domain
// query arrives without names they are backfilled from message and
// recorded on the classification.
func entityNames(c *types.ClassificationResult, message string) []string {
	if !c.IsDomainQuery {
		return nil
	}
	if len(c.EntityNames) == 0 {
		c.EntityNames = NormalizeNames(ExtractNames(message))
	}
	return NormalizeNames(c.EntityNames)
}
