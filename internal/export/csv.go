// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomtom215/cultivar/internal/models"
)

// CSVSink writes each table to {dir}/{name}.csv.
type CSVSink struct {
	dir string
}

// NewCSVSink creates the output directory if needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Name implements the pipeline sink interface.
func (s *CSVSink) Name() string { return "csv" }

// Dir returns the output directory.
func (s *CSVSink) Dir() string { return s.dir }

// Write writes every table, stopping at the first failure.
func (s *CSVSink) Write(ctx context.Context, tables []*models.Table) error {
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.WriteTable(t); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes one table through a temporary file and returns the
// final path.
func (s *CSVSink) WriteTable(t *models.Table) (string, error) {
	path := filepath.Join(s.dir, t.Name+".csv")

	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("table %s: %w", t.Name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header()); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("table %s: write header: %w", t.Name, err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = FormatCell(v)
		}
		if err := w.Write(record[:len(row)]); err != nil {
			_ = tmp.Close()
			return "", fmt.Errorf("table %s: write row: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("table %s: flush: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("table %s: close: %w", t.Name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("table %s: install: %w", t.Name, err)
	}
	return path, nil
}

// Close is a no-op.
func (s *CSVSink) Close() error { return nil }
