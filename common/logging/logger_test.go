package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Logger == nil {
		t.Fatal("expected non-nil underlying logger")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := &Logger{Logger: slog.New(handler)}

	tests := []struct {
		name          string
		ctx           context.Context
		expectEventID string
		expectCorrID  string
	}{
		{
			name:          "context with event ID",
			ctx:           WithEventID(context.Background(), "evt-123"),
			expectEventID: "evt-123",
		},
		{
			name: "context with event and correlation IDs",
			ctx: WithCorrelationID(
				WithEventID(context.Background(), "evt-123"), "corr-456"),
			expectEventID: "evt-123",
			expectCorrID:  "corr-456",
		},
		{
			name: "context without IDs",
			ctx:  context.Background(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			logger.InfoContext(tt.ctx, "test message")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log output: %v", err)
			}

			got, _ := entry[FieldEventID].(string)
			if got != tt.expectEventID {
				t.Errorf("event_id = %q, want %q", got, tt.expectEventID)
			}
			got, _ = entry[FieldCorrelationID].(string)
			if got != tt.expectCorrID {
				t.Errorf("correlation_id = %q, want %q", got, tt.expectCorrID)
			}
		})
	}
}

func TestEventIDFromContext(t *testing.T) {
	if got := EventIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty event ID, got %q", got)
	}
	ctx := WithEventID(context.Background(), "evt-9")
	if got := EventIDFromContext(ctx); got != "evt-9" {
		t.Errorf("expected evt-9, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
