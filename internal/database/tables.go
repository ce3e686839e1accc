// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/cultivar/internal/database/query"
	"github.com/tomtom215/cultivar/internal/models"
)

// WriteTable replaces the table t.Name with the contents of t. The drop,
// create and inserts run in one transaction, so readers see either the
// previous batch or the new one.
func (db *DB) WriteTable(ctx context.Context, t *models.Table) (err error) {
	tb := query.NewTableBuilder("", t.Name, t.Columns)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("table %s: begin transaction: %w", t.Name, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Warn().Err(rbErr).Str("table", t.Name).Msg("rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, tb.Drop()); err != nil {
		return fmt.Errorf("table %s: drop: %w", t.Name, err)
	}
	if _, err = tx.ExecContext(ctx, tb.Create()); err != nil {
		return fmt.Errorf("table %s: create: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, tb.Insert(query.DuckDB))
	if err != nil {
		return fmt.Errorf("table %s: prepare insert: %w", t.Name, err)
	}
	defer closeWithLog(stmt, &db.logger, "prepared statement")

	for i, row := range t.Rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("table %s: insert row %d: %w", t.Name, i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("table %s: commit: %w", t.Name, err)
	}

	db.logger.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Msg("table written")
	return nil
}

// WriteTables writes every table in order and stops at the first failure.
func (db *DB) WriteTables(ctx context.Context, tables []*models.Table) error {
	for _, t := range tables {
		if err := db.WriteTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// TableExists reports whether a table named name exists in the main schema.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("table %s: lookup: %w", name, err)
	}
	return n > 0, nil
}

// ReadTable returns the column names and every row of a table rendered as
// text, in storage order. Timestamps use models.FormatTime and nulls become
// empty strings, matching what a CSV export of the same table holds.
func (db *DB) ReadTable(ctx context.Context, name string) (header []string, rows [][]string, err error) {
	exists, err := db.TableExists(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rs, err := db.conn.QueryContext(ctx, query.SelectAll("", name))
	if err != nil {
		return nil, nil, fmt.Errorf("table %s: query: %w", name, err)
	}
	defer closeWithLog(rs, &db.logger, "rows")

	header, err = rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("table %s: columns: %w", name, err)
	}

	vals := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rs.Next() {
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("table %s: scan row %d: %w", name, len(rows)+1, err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = formatCell(v)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, fmt.Errorf("table %s: iterate: %w", name, err)
	}
	return header, rows, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return models.FormatTime(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case sql.RawBytes:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
