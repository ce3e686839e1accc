// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package pipeline runs the four analysis stages end to end and writes their
tables to every configured sink.

# Stages

	load -> features -> segment -> predict -> recommend -> export

Loading and feature building are fatal. A failing segmentation skips
prediction, since the R/F/M scores are prediction features. Prediction and
recommendation failures are recorded and the remaining tables are still
exported. Degraded sub-steps (K-Means on too few customers, a model that
could not train) appear as stage warnings rather than failures.

# Sinks

The CSV directory is always written. The XLSX workbook, the DuckDB file and
the PostgreSQL schema are enabled by the output configuration. Sinks are
written concurrently and each replaces its previous contents, so a re-run
over the same input leaves identical tables.

# Run Report

Each run writes run_report.json next to the CSV files with the stage
timings, row counts, model metrics and any errors. The Prometheus textfile
is written alongside when metrics.textfile_path is set.
*/
package pipeline
