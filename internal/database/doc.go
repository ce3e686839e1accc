// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package database wraps DuckDB, the embedded analytical store that serves as
both an input source and an output sink.

# Sink

WriteTable replaces one output table (scored customers, recommendations,
rules, ...) inside a single transaction. Column types come from
models.Column; every identifier is quoted by the query sub-package because
output headers keep their original spreadsheet names.

# Source

ReadTable returns a table as header plus text rows, the same shape the CSV
and XLSX readers produce, so ingest decodes all three sources with one
mapper.

# Connection

Extension auto-install and auto-load are disabled. File databases are
checkpointed on Close so the next open does not replay the WAL.

# Thread Safety

DB is safe for concurrent use through database/sql pooling. In-memory
databases, used by tests, run on a single pooled connection.
*/
package database
