// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StageLogger provides structured logging for pipeline stages with
// helpers for the events every stage emits.
type StageLogger struct {
	logger zerolog.Logger
	stage  string
}

// NewStageLogger creates a logger for the named stage, carrying the run ID
// from ctx when present.
func NewStageLogger(ctx context.Context, stage string) *StageLogger {
	return &StageLogger{
		logger: Ctx(ctx).With().Str("component", "pipeline").Str("stage", stage).Logger(),
		stage:  stage,
	}
}

// Logger returns the underlying zerolog logger.
func (l *StageLogger) Logger() *zerolog.Logger {
	return &l.logger
}

// Started logs the beginning of a stage.
func (l *StageLogger) Started(rows int) {
	l.logger.Info().Int("input_rows", rows).Msg("Stage started")
}

// Completed logs a successful stage with its output size and duration.
func (l *StageLogger) Completed(rows int, elapsed time.Duration) {
	l.logger.Info().
		Int("output_rows", rows).
		Dur("duration", elapsed).
		Msg("Stage completed")
}

// Failed logs a stage failure. The pipeline decides whether the failure
// aborts the run.
func (l *StageLogger) Failed(err error, elapsed time.Duration) {
	l.logger.Error().
		Err(err).
		Dur("duration", elapsed).
		Msg("Stage failed")
}

// Skipped logs a stage that did not run because an input it depends on is
// absent.
func (l *StageLogger) Skipped(reason string) {
	l.logger.Warn().Str("reason", reason).Msg("Stage skipped")
}
