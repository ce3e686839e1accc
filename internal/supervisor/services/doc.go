// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package services provides suture.Service wrappers for the scheduled runner.

PipelineService:
  - Runs the pipeline every Interval, and once on start when configured
  - Never overlaps runs; Trigger requests an immediate run
  - Tracks the latest RunStatus for the health endpoint
  - Returns ErrTooManyFailures after MaxConsecutiveFailures so the
    supervisor can back off and restart it

MetricsService:
  - Serves /metrics (the pipeline Prometheus registry) and /healthz
  - Translates ListenAndServe into suture's context-aware Serve
  - Shuts the listener down gracefully on cancellation

Both implement fmt.Stringer so suture's event log names them.
*/
package services
