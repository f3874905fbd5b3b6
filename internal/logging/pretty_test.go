// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Handle INFO level log", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "routed request", 0)
		record.AddAttrs(slog.Int("entities", 2))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "INFO:", "Expected output to contain INFO level")
		assert.Contains(t, output, "routed request", "Expected output to contain the message")
		assert.Contains(t, output, `"entities":2`, "Expected output to contain the attribute")
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelWarn, "simple message", 0)
		assert.NoError(t, handler.Handle(ctx, record))

		output := buf.String()
		assert.Contains(t, output, "WARN:")
		assert.Contains(t, output, "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Errors and durations render as strings", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelError, "lookup failed", 0)
		record.AddAttrs(
			slog.Any("error", errors.New("connection refused")),
			slog.Duration("elapsed", 1500*time.Millisecond),
		)
		assert.NoError(t, handler.Handle(ctx, record))

		output := buf.String()
		assert.Contains(t, output, "ERROR:")
		assert.Contains(t, output, "connection refused")
		assert.Contains(t, output, "1.5s")
	})

	t.Run("Timestamp is formatted", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)
		assert.NoError(t, handler.Handle(ctx, record))
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String())
	})
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{}))

	logger.With("request_id", "abc-123").WithGroup("lookup").Info("fetched", "name", "pikachu")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"abc-123"`)
	assert.Contains(t, output, `"lookup.name":"pikachu"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Debug("hidden too")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestForRequest(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	ForRequest(context.Background(), log).Info("plain")
	assert.Contains(t, buf.String(), "plain {}")

	buf.Reset()
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	ForRequest(ctx, log).Info("tagged")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
