// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package supervisor runs the pipeline on a schedule under suture v4
supervision.

# Overview

	RootSupervisor ("cultivar")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── PipelineService (scheduled runs)
	└── TelemetrySupervisor ("telemetry-layer")
	    └── MetricsService (if metrics.addr is set)

The layers restart independently, so a metrics listener that fails to
bind never interrupts a run, and a pipeline that keeps failing never takes
/healthz down.

# Usage

	s, err := supervisor.NewScheduler(cfg, p, logging.NewSlogLogger("supervisor"), logger)
	if err != nil {
	    return err
	}
	return s.Serve(ctx)

# Configuration

The schedule section of the configuration maps onto the tree:

	schedule:
	  interval: 24h           # time between runs
	  run_on_start: true      # run immediately on startup
	  failure_threshold: 5    # consecutive failed runs before a restart
	  failure_backoff: 15s    # supervisor backoff once the threshold is hit
	  shutdown_timeout: 10s   # per-service shutdown grace period

# Failure Handling

A failed run is logged and counted; the service keeps its schedule. After
failure_threshold consecutive failures the service returns an error and
suture restarts it, which re-runs it immediately when run_on_start is set.
suture's own failure counter decays over FailureDecay seconds and enforces
FailureBackoff when restarts pile up.

# Logging

suture events (service start, stop, panic, backoff) go through sutureslog
to the slog bridge from the logging package, so they share the zerolog
output with the rest of the process.
*/
package supervisor
