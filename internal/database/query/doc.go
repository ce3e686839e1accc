// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package query builds the SQL statements the DuckDB and PostgreSQL sinks
// issue for output tables.
//
// Output tables are described by models.Table, whose column names are the
// original spreadsheet headers ("Customer_ID", "Order #", "Product(s)").
// Every identifier is therefore quoted:
//
//	tb := query.NewTableBuilder("analytics", "cross_sell_opportunities", cols)
//	tb.Create()
//	// CREATE TABLE "analytics"."cross_sell_opportunities" ("Customer_ID" TEXT, ...)
//
// Values are always bound through placeholders; only identifiers are
// interpolated.
//
// # Thread Safety
//
// TableBuilder is immutable after construction and safe for concurrent use.
package query
