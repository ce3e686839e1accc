// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package pgsink writes output tables to PostgreSQL.
//
// Open parses a pgx connection string, opens a small pool and creates the
// target schema. Every table is replaced in its own transaction (DROP,
// CREATE, COPY) so downstream dashboards see the previous batch until the
// new one commits. Column types come from models.ColumnType and identifiers
// are quoted, so "Order #" and "Product(s)" survive unchanged.
//
// The sink is enabled by setting output.postgres_url. Integration tests run
// against a throwaway container and are guarded by the integration build tag:
//
//	go test -tags integration ./internal/pgsink/...
package pgsink
