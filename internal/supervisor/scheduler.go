// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package supervisor

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/config"
	"github.com/tomtom215/cultivar/internal/supervisor/services"
)

// Scheduler is the supervised periodic runner: a tree holding the pipeline
// service and, when configured, the metrics listener.
type Scheduler struct {
	*SupervisorTree
	Pipeline *services.PipelineService
	Metrics  *services.MetricsService
}

// NewScheduler builds the scheduler tree for runner from the schedule and
// metrics configuration. The pipeline service gives up after
// FailureThreshold consecutive failed runs and the tree restarts it after
// FailureBackoff.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScheduler(cfg *config.Config, runner services.Runner, slogger *slog.Logger, logger zerolog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: nil runner")
	}

	tree, err := NewSupervisorTree(slogger, TreeConfig{
		FailureThreshold: cfg.Schedule.FailureThreshold,
		FailureBackoff:   cfg.Schedule.FailureBackoff,
		ShutdownTimeout:  cfg.Schedule.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	s := &Scheduler{SupervisorTree: tree}
	s.Pipeline = services.NewPipelineService(runner, services.PipelineServiceConfig{
		Interval:               cfg.Schedule.Interval,
		RunOnStart:             cfg.Schedule.RunOnStart,
		MaxConsecutiveFailures: int(cfg.Schedule.FailureThreshold),
	}, logger)
	tree.AddPipelineService(s.Pipeline)

	if cfg.Metrics.Addr != "" {
		server := services.NewMetricsServer(cfg.Metrics.Addr, s.Pipeline.Status)
		s.Metrics = services.NewMetricsService(server, cfg.Schedule.ShutdownTimeout)
		tree.AddTelemetryService(s.Metrics)
	}
	return s, nil
}
