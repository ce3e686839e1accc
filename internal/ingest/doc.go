// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package ingest loads the pipeline input snapshot: a transaction table and an
optional base customer table.

# Sources

The reader is picked from the file extension:

  - .csv: header row first (encoding/csv, ragged rows tolerated)
  - .xlsx, .xlsm: first worksheet (excelize); date cells may be serial numbers
  - .duckdb, .db: a table inside a DuckDB database (see package database)

All three produce a Table of text cells, decoded by DecodeTransactions and
DecodeCustomers into typed rows validated against their struct tags.

# Errors

A missing required column yields a *ColumnError (errors.Is ErrMissingColumn).
An unparseable or invalid value yields a *RowError naming the file, the
1-based line and the column. Both are fatal for the run.

# Caching

Loader fingerprints the input files with SHA-256 and consults a
cache.Cacher before parsing. Snapshots are stored JSON-encoded, so the
Badger backend reuses a parse across CLI invocations.
*/
package ingest
