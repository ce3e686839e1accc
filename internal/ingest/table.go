// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"fmt"
	"strings"
)

// Table is a raw input table: a header and text rows, independent of the
// file format it was read from.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	// serialDates accepts spreadsheet serial numbers in date columns.
	serialDates bool
	index       map[string]int
	lines       []int
}

// NewTable builds a Table, trimming header names and dropping rows whose
// cells are all blank. It returns ErrEmptyTable when no data rows remain.
func NewTable(source string, header []string, rows [][]string) (*Table, error) {
	t := &Table{
		Source: source,
		Header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for i, r := range rows {
		if !blankRow(r) {
			t.Rows = append(t.Rows, r)
			t.lines = append(t.lines, i+2)
		}
	}
	if len(t.Header) == 0 || len(t.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyTable)
	}
	return t, nil
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Has reports whether the table carries column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require returns a *ColumnError for the first missing column.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return &ColumnError{File: t.Source, Column: c}
		}
	}
	return nil
}

// Cell returns the trimmed value of column in row, or "" when the column
// is absent or the row is short.
func (t *Table) Cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Line returns the 1-based source line of data row i, counting the header
// as line 1 and skipped blank rows.
func (t *Table) Line(i int) int {
	if i < len(t.lines) {
		return t.lines[i]
	}
	return i + 2
}
