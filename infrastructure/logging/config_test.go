package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in, slog.LevelInfo); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if !strings.HasSuffix(dir, filepath.Join(AppDirName, "logs")) {
		t.Errorf("DefaultLogDir() = %q", dir)
	}
}

func TestFrom(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatal("From() returned nil without a logger in context")
	}

	logger := slog.New(slog.DiscardHandler)
	ctx := With(context.Background(), logger)
	if From(ctx) != logger {
		t.Error("From() did not return the logger stored by With()")
	}

	if From(WithAttrs(ctx, "job", "j1")) == logger {
		t.Error("WithAttrs() should derive a new logger")
	}
}
