// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package query

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cultivar/internal/models"
)

// Dialect selects the placeholder style of generated statements.
type Dialect int

const (
	// DuckDB uses ? placeholders.
	DuckDB Dialect = iota
	// Postgres uses $1, $2, ... placeholders.
	Postgres
)

// QuoteIdent quotes an identifier for DuckDB and PostgreSQL. Output column
// names such as "Order #" and "Product(s)" are not valid bare identifiers.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Qualify returns a quoted, optionally schema-qualified table name.
func Qualify(schema, table string) string {
	if schema == "" {
		return QuoteIdent(table)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(table)
}

// TableBuilder generates DDL and DML for one output table.
//
// Example usage:
//
//	tb := query.NewTableBuilder("", t.Name, t.Columns)
//	tx.ExecContext(ctx, tb.Drop())
//	tx.ExecContext(ctx, tb.Create())
//	stmt, _ := tx.PrepareContext(ctx, tb.Insert(query.DuckDB))
type TableBuilder struct {
	qualified string
	columns   []models.Column
}

// NewTableBuilder creates a TableBuilder for schema.table.
func NewTableBuilder(schema, table string, columns []models.Column) *TableBuilder {
	return &TableBuilder{
		qualified: Qualify(schema, table),
		columns:   columns,
	}
}

// Name returns the quoted, qualified table name.
func (tb *TableBuilder) Name() string {
	return tb.qualified
}

// Drop returns a DROP TABLE IF EXISTS statement.
func (tb *TableBuilder) Drop() string {
	return "DROP TABLE IF EXISTS " + tb.qualified
}

// Create returns a CREATE TABLE statement with one typed column per
// models.Column, in order.
func (tb *TableBuilder) Create() string {
	defs := make([]string, len(tb.columns))
	for i, c := range tb.columns {
		defs[i] = QuoteIdent(c.Name) + " " + c.Type.String()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", tb.qualified, strings.Join(defs, ", "))
}

// Insert returns a single-row INSERT with one placeholder per column.
func (tb *TableBuilder) Insert(d Dialect) string {
	names := make([]string, len(tb.columns))
	placeholders := make([]string, len(tb.columns))
	for i, c := range tb.columns {
		names[i] = QuoteIdent(c.Name)
		if d == Postgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tb.qualified, strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

// SelectAll returns a SELECT * over a quoted, qualified table name.
func SelectAll(schema, table string) string {
	return "SELECT * FROM " + Qualify(schema, table)
}
