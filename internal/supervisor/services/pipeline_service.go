// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/pipeline"
)

// ErrTooManyFailures is returned from Serve after MaxConsecutiveFailures
// runs in a row have failed, handing the restart decision to the supervisor.
var ErrTooManyFailures = errors.New("pipeline service: too many consecutive failures")

// Runner runs the pipeline once. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// PipelineServiceConfig holds configuration for the scheduled pipeline.
type PipelineServiceConfig struct {
	// Interval between runs.
	Interval time.Duration

	// RunOnStart triggers a run as soon as the service starts.
	RunOnStart bool

	// RunTimeout bounds a single run. Zero means no limit.
	RunTimeout time.Duration

	// MaxConsecutiveFailures makes Serve return after this many failed runs
	// in a row. Zero never gives up.
	MaxConsecutiveFailures int
}

// RunStatus is the scheduler's view of the latest run.
type RunStatus struct {
	Runs                int       `json:"runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastRunID           string    `json:"last_run_id,omitempty"`
	LastRunAt           time.Time `json:"last_run_at,omitempty"`
	LastDuration        string    `json:"last_duration,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
	LastSuccessAt       time.Time `json:"last_success_at,omitempty"`
}

// Healthy reports whether the latest run succeeded, or no run has finished yet.
func (s RunStatus) Healthy() bool {
	return s.ConsecutiveFailures == 0
}

// PipelineService runs the pipeline on a fixed interval under suture
// supervision. Runs never overlap; a tick that arrives during a run is
// dropped.
type PipelineService struct {
	runner  Runner
	config  PipelineServiceConfig
	logger  zerolog.Logger
	name    string
	trigger chan struct{}

	mu     sync.RWMutex
	status RunStatus
}

// NewPipelineService creates a new scheduled pipeline service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineService(runner Runner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &PipelineService{
		runner:  runner,
		config:  cfg,
		logger:  logger.With().Str("service", "pipeline").Logger(),
		name:    "pipeline-scheduler",
		trigger: make(chan struct{}, 1),
	}
}

// Serve implements the suture.Service interface.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_start", s.config.RunOnStart).
		Dur("interval", s.config.Interval).
		Msg("pipeline scheduler starting")

	if s.config.RunOnStart {
		if err := s.runOnce(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled run triggered")
			if err := s.runOnce(ctx); err != nil {
				return err
			}

		case <-s.trigger:
			s.logger.Info().Msg("manual run triggered")
			if err := s.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// Trigger requests an immediate run. It never blocks; a request made while
// another is pending is merged into it.
func (s *PipelineService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Status returns a copy of the latest run status.
func (s *PipelineService) Status() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// runOnce performs one run and updates the status. It returns an error only
// when Serve should stop: shutdown or too many failures in a row.
func (s *PipelineService) runOnce(ctx context.Context) error {
	runCtx := ctx
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.runner.Run(runCtx)
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	s.status.Runs++
	s.status.LastRunAt = start.UTC()
	s.status.LastDuration = elapsed.Round(time.Millisecond).String()
	if res != nil {
		s.status.LastRunID = res.RunID
	}
	if err != nil {
		s.status.ConsecutiveFailures++
		s.status.LastError = err.Error()
	} else {
		s.status.ConsecutiveFailures = 0
		s.status.LastError = ""
		s.status.LastSuccessAt = s.status.LastRunAt
	}
	failures := s.status.ConsecutiveFailures
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).
			Int("consecutive_failures", failures).
			Dur("duration", elapsed).
			Msg("scheduled run failed")
		if limit := s.config.MaxConsecutiveFailures; limit > 0 && failures >= limit {
			return fmt.Errorf("%w: %d", ErrTooManyFailures, failures)
		}
		return nil
	}

	s.logger.Info().Dur("duration", elapsed).Msg("scheduled run complete")
	return nil
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
