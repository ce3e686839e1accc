// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:     "debug",
		Format:    "json",
		Timestamp: true,
		Output:    &buf,
	})
	defer Init(DefaultConfig())

	Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtxAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRunID(ctx, "run-1234")

	Ctx(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"run_id":"run-1234"`) {
		t.Errorf("expected run_id field, got: %s", buf.String())
	}
}

func TestRunIDFromContext_Missing(t *testing.T) {
	t.Parallel()

	if id := RunIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty run ID, got %q", id)
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()

	id := GenerateRunID()
	if len(id) != 36 {
		t.Fatalf("expected UUID length 36, got %d", len(id))
	}
	if got := ShortID(id); got != id[:8] {
		t.Errorf("ShortID = %q, want %q", got, id[:8])
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID(abc) = %q", got)
	}
}

func TestStageLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))

	stage := NewStageLogger(ctx, "segmentation")
	stage.Started(10)
	stage.Completed(10, 5*time.Millisecond)
	stage.Failed(errors.New("boom"), time.Millisecond)
	stage.Skipped("no predictions")

	out := buf.String()
	for _, want := range []string{
		`"stage":"segmentation"`,
		`"input_rows":10`,
		`"output_rows":10`,
		`"error":"boom"`,
		`"reason":"no predictions"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	logger.With("service", "scheduler").WithGroup("run").Warn("restarting", "attempt", 2)

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected warn level, got: %s", out)
	}
	if !strings.Contains(out, `"run.service":"scheduler"`) && !strings.Contains(out, `"service":"scheduler"`) {
		t.Errorf("expected service attr, got: %s", out)
	}
	if !strings.Contains(out, `"run.attempt":2`) {
		t.Errorf("expected grouped attempt attr, got: %s", out)
	}
	if !strings.Contains(out, "restarting") {
		t.Errorf("expected message, got: %s", out)
	}
}
