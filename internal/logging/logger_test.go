package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "k", "v")

	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	FromContext(ctx).Info("handled")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("request id missing from %q", buf.String())
	}
}

func TestReportHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewReport(&buf)

	logger.Error("Sites missing required column header: BuildingCode", "ignored", 1)
	logger.Warn("second")
	logger.Debug("below level")

	want := "ERROR - Sites missing required column header: BuildingCode\nWARN - second\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestReportHandler_WithAttrsKeepsFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewReportHandler(&buf, slog.LevelError)).With("run", "x").WithGroup("g")

	logger.Info("dropped")
	logger.Error("kept")

	if buf.String() != "ERROR - kept\n" {
		t.Errorf("output = %q", buf.String())
	}
}
