// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging provides the colourised slog handler used by the CLI and
// the HTTP server. Each record renders as one line:
//
//	[15:04:05.000] INFO: message {"key":"value"}
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

// PrettyHandler is a slog.Handler that writes human-readable, coloured
// lines. Level filtering is delegated to the embedded handler.
type PrettyHandler struct {
	slog.Handler
	l      *log.Logger
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler returns a handler writing to out.
func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
	}
}

// Handle formats and writes r.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = attrValue(a.Value)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fields[key] = attrValue(a.Value)
		return true
	})

	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling log attributes: %w", err)
	}

	timeStr := r.Time.Format("[15:04:05.000]")
	h.l.Println(timeStr, level, color.CyanString(r.Message), color.WhiteString(string(b)))
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyHandler{
		Handler: h.Handler.WithAttrs(attrs),
		l:       h.l,
		attrs:   merged,
		groups:  h.groups,
	}
}

// WithGroup returns a handler that prefixes record attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
		groups:  groups,
	}
}

// attrValue converts a slog value into something json.Marshal renders
// usefully. Errors and durations would otherwise marshal as {} or nanoseconds.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindGroup:
		m := make(map[string]any)
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	}
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing pretty lines to out at the given level.
func New(out io.Writer, level string) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: ParseLevel(level)},
	}
	return slog.New(NewPrettyHandler(out, opts))
}

// Discard returns a logger that drops every record. Tests and library
// callers without a logger use it.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
