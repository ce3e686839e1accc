// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cultivar/internal/pipeline"
)

// mockRunner is a Runner whose outcome and latency are set by the test.
type mockRunner struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (m *mockRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	err := m.err
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return &pipeline.Result{}, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	return &pipeline.Result{RunID: string(rune('a' + n - 1))}, err
}

func (m *mockRunner) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestPipelineService_Interface(t *testing.T) {
	var _ suture.Service = (*PipelineService)(nil)
	var _ Runner = (*pipeline.Pipeline)(nil)
}

func TestPipelineService_String(t *testing.T) {
	svc := NewPipelineService(&mockRunner{}, PipelineServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "pipeline-scheduler" {
		t.Errorf("String() = %q, want pipeline-scheduler", got)
	}
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("default interval = %v, want 24h", svc.config.Interval)
	}
}

func TestPipelineService_RunOnStart(t *testing.T) {
	tests := []struct {
		name       string
		runOnStart bool
		want       int
	}{
		{"enabled", true, 1},
		{"disabled", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			svc := NewPipelineService(runner, PipelineServiceConfig{
				RunOnStart: tt.runOnStart,
				Interval:   time.Hour,
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = svc.Serve(ctx)

			if got := runner.getCalls(); got != tt.want {
				t.Errorf("Run() called %d times, want %d", got, tt.want)
			}
		})
	}
}

func TestPipelineService_Scheduled(t *testing.T) {
	runner := &mockRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: 50 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := runner.getCalls(); got < 2 {
		t.Errorf("Run() called %d times, want >= 2", got)
	}
	if st := svc.Status(); st.Runs != runner.getCalls() || !st.Healthy() || st.LastSuccessAt.IsZero() {
		t.Errorf("Status() = %+v", st)
	}
}

func TestPipelineService_Trigger(t *testing.T) {
	runner := &mockRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	svc.Trigger()
	svc.Trigger() // merged with the pending request

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := runner.getCalls(); got != 1 {
		t.Errorf("Run() called %d times, want 1", got)
	}
}

func TestPipelineService_Failures(t *testing.T) {
	t.Run("keeps running below the limit", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("boom")}
		svc := NewPipelineService(runner, PipelineServiceConfig{
			RunOnStart: true,
			Interval:   time.Hour,
		}, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
		}

		st := svc.Status()
		if st.Healthy() || st.ConsecutiveFailures != 1 || st.LastError != "boom" {
			t.Errorf("Status() = %+v", st)
		}
	})

	t.Run("returns after the limit", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("boom")}
		svc := NewPipelineService(runner, PipelineServiceConfig{
			RunOnStart:             true,
			Interval:               10 * time.Millisecond,
			MaxConsecutiveFailures: 3,
		}, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, ErrTooManyFailures) {
			t.Errorf("Serve() = %v, want ErrTooManyFailures", err)
		}
		if got := runner.getCalls(); got != 3 {
			t.Errorf("Run() called %d times, want 3", got)
		}
	})

	t.Run("success resets the count", func(t *testing.T) {
		runner := &mockRunner{err: errors.New("boom")}
		svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

		_ = svc.runOnce(context.Background())
		runner.mu.Lock()
		runner.err = nil
		runner.mu.Unlock()
		_ = svc.runOnce(context.Background())

		st := svc.Status()
		if !st.Healthy() || st.Runs != 2 || st.LastRunID != "b" {
			t.Errorf("Status() = %+v", st)
		}
	})
}

func TestPipelineService_RunTimeout(t *testing.T) {
	runner := &mockRunner{delay: time.Second}
	svc := NewPipelineService(runner, PipelineServiceConfig{
		Interval:   time.Hour,
		RunTimeout: 20 * time.Millisecond,
	}, zerolog.Nop())

	if err := svc.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce() = %v, want nil", err)
	}
	if st := svc.Status(); st.ConsecutiveFailures != 1 {
		t.Errorf("timed-out run not counted as failure: %+v", st)
	}
}

func TestPipelineService_GracefulShutdown(t *testing.T) {
	runner := &mockRunner{delay: time.Second}
	svc := NewPipelineService(runner, PipelineServiceConfig{
		RunOnStart: true,
		Interval:   time.Hour,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
	if st := svc.Status(); st.Runs != 0 {
		t.Errorf("cancelled run should not be recorded: %+v", st)
	}
}
