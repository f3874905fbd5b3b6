// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse recovers structured values from model output that may be
// valid JSON, Python-literal-style text, or prose with an embedded JSON
// fragment. Strategies are tried in a fixed order and the first success
// wins; when all fail the raw text is returned unchanged and must be treated
// as opaque.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"
)

// Strategy identifies which recovery step produced a Result.
type Strategy int

const (
	// StrategyStrict is a strict JSON parse of the whole input.
	StrategyStrict Strategy = iota
	// StrategyFragment is a strict JSON parse of the largest balanced
	// {"key": ...} fragment found by a quote-aware scan.
	StrategyFragment
	// StrategyLiteral is a permissive literal parse accepting single-quoted
	// strings and True/False/None.
	StrategyLiteral
	// StrategyRaw means nothing parsed; Value holds the input string.
	StrategyRaw
)

func (s Strategy) String() string {
	switch s {
	case StrategyStrict:
		return "strict"
	case StrategyFragment:
		return "fragment"
	case StrategyLiteral:
		return "literal"
	case StrategyRaw:
		return "raw"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ErrUnstructured is returned by Decode when no strategy recovered a
// structured value.
var ErrUnstructured = errors.New("output is not structured data")

// Result is the outcome of Recover.
type Result struct {
	// Value is a map[string]any or []any when Structured, else the raw string.
	Value      any
	Structured bool
	Strategy   Strategy
}

type step struct {
	strategy Strategy
	fn       func(string) (any, bool)
}

// steps is the ordered strategy list.
var steps = []step{
	{StrategyStrict, parseStrict},
	{StrategyFragment, parseFragment},
	{StrategyLiteral, parseLiteral},
}

// Recover runs the strategies in order. It never panics and never returns
// an error: terminal failure yields the raw input with Structured false.
func Recover(raw string) Result {
	for _, s := range steps {
		if v, ok := safe(s.fn, raw); ok {
			return Result{Value: v, Structured: true, Strategy: s.strategy}
		}
	}
	return Result{Value: raw, Structured: false, Strategy: StrategyRaw}
}

// Decode recovers raw and decodes the structured value into dst, which must
// be a pointer. It returns ErrUnstructured when only the raw fallback
// matched.
func Decode(raw string, dst any) (Strategy, error) {
	res := Recover(raw)
	if !res.Structured {
		return res.Strategy, ErrUnstructured
	}
	b, err := json.Marshal(res.Value)
	if err != nil {
		return res.Strategy, fmt.Errorf("re-encoding %s result: %w", res.Strategy, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return res.Strategy, fmt.Errorf("decoding %s result: %w", res.Strategy, err)
	}
	return res.Strategy, nil
}

// safe runs fn and converts a panic into a failed attempt.
func safe(fn func(string) (any, bool), raw string) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = nil, false
		}
	}()
	return fn(raw)
}

// structured reports whether v is a mapping or a sequence.
func structured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func parseStrict(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil, false
	}
	return v, structured(v)
}

func parseFragment(raw string) (any, bool) {
	frags := fragments(raw)
	sort.SliceStable(frags, func(i, j int) bool { return len(frags[i]) > len(frags[j]) })
	for _, f := range frags {
		if v, ok := parseStrict(f); ok {
			return v, true
		}
	}
	return nil, false
}

// fragments returns every balanced object substring of s that opens with a
// double-quoted key, i.e. is shaped like {"key": [ ... ]}. Brackets inside
// single- or double-quoted strings are ignored and backslash escapes are
// honoured.
func fragments(s string) []string {
	var out []string
	for start := 0; start < len(s); start++ {
		if s[start] != '{' || !opensWithKey(s[start+1:]) {
			continue
		}
		if end, ok := matchClose(s, start); ok {
			out = append(out, s[start:end+1])
		}
	}
	return out
}

func opensWithKey(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return strings.HasPrefix(rest, `"`)
}

// matchClose finds the index of the bracket closing s[start].
func matchClose(s string, start int) (int, bool) {
	var stack []byte
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseLiteral accepts Python-literal-style mappings and lists. String
// literals are first rewritten as JSON strings with Python escape rules, then
// the text is read as YAML flow syntax, which covers True/False. The plain
// scalar None maps to nil. Aliases and anchors are rejected so the parse
// stays literal-only.
func parseLiteral(raw string) (any, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || (text[0] != '{' && text[0] != '[') {
		return nil, false
	}
	text, ok := requote(text)
	if !ok {
		return nil, false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, false
	}
	v, err := literalValue(&doc)
	if err != nil {
		return nil, false
	}
	return v, structured(v)
}

func literalValue(n *yaml.Node) (any, error) {
	if n.Anchor != "" {
		return nil, fmt.Errorf("anchors are not literals")
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) != 1 {
			return nil, fmt.Errorf("expected one document, got %d", len(n.Content))
		}
		return literalValue(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("non-scalar key at line %d", k.Line)
			}
			v, err := literalValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[k.Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := literalValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.ScalarNode:
		if n.Style == 0 && n.Value == "None" {
			return nil, nil
		}
		if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported node kind %d", n.Kind)
	}
}

// requote replaces every quoted string in s with its JSON encoding.
func requote(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\'' && c != '"' {
			b.WriteByte(c)
			i++
			continue
		}
		str, n, ok := unquotePython(s[i:])
		if !ok {
			return "", false
		}
		enc, err := json.Marshal(str)
		if err != nil {
			return "", false
		}
		b.Write(enc)
		i += n
	}
	return b.String(), true
}

// unquotePython decodes the string literal at the start of s and returns it
// with the number of bytes consumed, closing quote included. Unknown escapes
// keep their backslash.
func unquotePython(s string) (string, int, bool) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); {
		c := s[i]
		if c == quote {
			return b.String(), i + 1, true
		}
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", 0, false
		}
		e := s[i+1]
		i += 2
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '\'', '"':
			b.WriteByte(e)
		case '\n':
			// line continuation
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if i+width > len(s) {
				return "", 0, false
			}
			r, err := strconv.ParseUint(s[i:i+width], 16, 32)
			if err != nil || r > utf8.MaxRune {
				return "", 0, false
			}
			b.WriteRune(rune(r))
			i += width
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+2 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			r, _ := strconv.ParseUint(s[i-1:j], 8, 32)
			b.WriteRune(rune(r))
			i = j
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return "", 0, false
}
