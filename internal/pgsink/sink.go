// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package pgsink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/database/query"
	"github.com/tomtom215/cultivar/internal/models"
)

// DefaultSchema receives output tables when no schema is configured.
const DefaultSchema = "cultivar"

// ErrNoURL is returned by Open when the connection string is empty.
var ErrNoURL = errors.New("pgsink: empty connection string")

// Config holds PostgreSQL sink settings.
type Config struct {
	URL      string
	Schema   string
	MaxConns int32
}

// Sink writes output tables into a PostgreSQL schema. Each table is
// replaced inside its own transaction and loaded with COPY.
type Sink struct {
	pool   *pgxpool.Pool
	schema string
	logger zerolog.Logger
}

// Open connects to PostgreSQL and creates the target schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Sink, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if cfg.Schema == "" {
		cfg.Schema = DefaultSchema
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MaxConns = 4
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	log := logger.With().Str("component", "pgsink").Logger()
	log.Debug().
		Str("host", poolCfg.ConnConfig.Host).
		Uint16("port", poolCfg.ConnConfig.Port).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("connecting to postgres")

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+query.QuoteIdent(cfg.Schema)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema %s: %w", cfg.Schema, err)
	}

	log.Info().
		Str("database", poolCfg.ConnConfig.Database).
		Str("schema", cfg.Schema).
		Msg("postgres sink ready")

	return &Sink{pool: pool, schema: cfg.Schema, logger: log}, nil
}

// Name implements the pipeline sink interface.
func (s *Sink) Name() string { return "postgres" }

// Schema returns the target schema.
func (s *Sink) Schema() string { return s.schema }

// Write replaces every table in order, stopping at the first failure.
func (s *Sink) Write(ctx context.Context, tables []*models.Table) error {
	for _, t := range tables {
		if err := s.WriteTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable drops, recreates and COPYs one table in a single transaction.
func (s *Sink) WriteTable(ctx context.Context, t *models.Table) (err error) {
	tb := query.NewTableBuilder(s.schema, t.Name, t.Columns)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("table %s: begin transaction: %w", t.Name, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn().Err(rbErr).Str("table", t.Name).Msg("rollback failed")
			}
		}
	}()

	if _, err = tx.Exec(ctx, tb.Drop()); err != nil {
		return fmt.Errorf("table %s: drop: %w", t.Name, err)
	}
	if _, err = tx.Exec(ctx, tb.Create()); err != nil {
		return fmt.Errorf("table %s: create: %w", t.Name, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{s.schema, t.Name}, t.Header(), pgx.CopyFromRows(t.Rows))
	if err != nil {
		return fmt.Errorf("table %s: copy: %w", t.Name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("table %s: commit: %w", t.Name, err)
	}

	s.logger.Debug().Str("table", t.Name).Int64("rows", n).Msg("table written")
	return nil
}

// Count returns the number of rows in schema.table.
func (s *Sink) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+query.Qualify(s.schema, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}
