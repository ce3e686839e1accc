// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package export writes output tables to files: one CSV per table, an
// optional XLSX workbook with one worksheet per table, and the JSON run
// report.
//
// Every writer goes through a temporary file and a rename, so a consumer
// polling the output directory never reads a half-written file. Cells are
// rendered by FormatCell, which is deterministic: the same tables always
// produce byte-identical CSV files.
package export
