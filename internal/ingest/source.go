// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Source locates the two input tables. CustomersPath is optional.
type Source struct {
	TransactionsPath  string
	CustomersPath     string
	TransactionsTable string // DuckDB sources only
	CustomersTable    string // DuckDB sources only
}

// Format is an input file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatDuckDB Format = "duckdb"
)

// DetectFormat picks the reader from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".duckdb", ".db":
		return FormatDuckDB, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
}

// ReadTable reads one table from path in whichever format its extension
// names. table is used only for DuckDB sources.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func ReadTable(ctx context.Context, path, table string, logger zerolog.Logger) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return ReadCSVFile(path)
	case FormatXLSX:
		return ReadXLSXFile(path)
	default:
		return ReadDuckDBTable(ctx, path, table, logger)
	}
}

// Fingerprint hashes the source files and the table names. Any change to
// the content of an input changes the fingerprint.
func (s Source) Fingerprint() (string, error) {
	h := sha256.New()
	for _, part := range []struct{ path, table string }{
		{s.TransactionsPath, s.TransactionsTable},
		{s.CustomersPath, s.CustomersTable},
	} {
		fmt.Fprintf(h, "%s\x00", part.table)
		if part.path == "" {
			h.Write([]byte("-\x00"))
			continue
		}
		if err := hashFile(h, part.path); err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return nil
}
