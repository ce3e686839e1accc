// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/database"
)

// ReadDuckDBTable reads one table from a DuckDB database file.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func ReadDuckDBTable(ctx context.Context, path, table string, logger zerolog.Logger) (*Table, error) {
	db, err := database.Open(ctx, database.DefaultConfig(path), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer db.Close()

	header, rows, err := db.ReadTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewTable(path+"#"+table, header, rows)
}
