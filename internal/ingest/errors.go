// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable is returned for an input table with no data rows.
	ErrEmptyTable = errors.New("ingest: empty table")

	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("ingest: missing required column")

	// ErrUnsupportedSource is returned for an input path whose extension
	// names no known reader.
	ErrUnsupportedSource = errors.New("ingest: unsupported source")

	// ErrNoTransactions is returned when no transactions path is configured.
	ErrNoTransactions = errors.New("ingest: transactions path not set")
)

// ColumnError names the file and the required column it lacks.
type ColumnError struct {
	File   string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

// Unwrap returns ErrMissingColumn.
func (e *ColumnError) Unwrap() error {
	return ErrMissingColumn
}

// RowError reports a value that could not be decoded or failed validation.
// Row is the 1-based line in the source, counting the header as line 1.
type RowError struct {
	File   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: row %d, column %q: value %q: %v", e.File, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
