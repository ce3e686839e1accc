// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package metrics provides Prometheus instrumentation for pipeline runs.

Collectors are registered on a dedicated Registry rather than the default
one. The pipeline is a batch job, so metrics are not scraped over HTTP; after
each run they are written with WriteTextfile for node_exporter's textfile
collector (metrics.textfile_path).

# Metric Families

Runs:
  - cultivar_run_duration_seconds: histogram of complete runs
  - cultivar_runs_total{status}: runs by outcome
  - cultivar_run_last_success_timestamp_seconds

Stages:
  - cultivar_stage_duration_seconds{stage}
  - cultivar_stage_runs_total{stage,status}: status is ok, failed or skipped
  - cultivar_stage_failures_total{stage}

Outputs:
  - cultivar_table_rows{table}
  - cultivar_model_quality{model,metric}: accuracy and auc for churn; r2,
    mae and rmse for clv
  - cultivar_recommendations_generated_total
  - cultivar_association_rules, cultivar_cross_sell_opportunities

Infrastructure:
  - cultivar_sink_write_duration_seconds{sink}, cultivar_sink_write_errors_total{sink}
  - cultivar_snapshot_cache_hits_total{backend}, cultivar_snapshot_cache_misses_total{backend}
  - cultivar_app_info{version,go_version}

# Usage

	start := time.Now()
	err := runStage(ctx)
	metrics.RecordStage("segment", metrics.StatusOK, time.Since(start))
	...
	if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
	    logger.Warn().Err(err).Msg("metrics export failed")
	}

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
