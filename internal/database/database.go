// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"
)

// MemoryPath opens a process-private in-memory database.
const MemoryPath = ":memory:"

// Config holds DuckDB connection settings.
type Config struct {
	Path      string // File path, or MemoryPath
	Threads   int    // 0 = runtime.NumCPU()
	MaxMemory string // DuckDB size string, e.g. "2GB"
}

// DefaultConfig returns settings for a file database at path.
func DefaultConfig(path string) Config {
	if path == "" {
		path = MemoryPath
	}
	return Config{
		Path:      path,
		Threads:   0,
		MaxMemory: "2GB",
	}
}

// DB wraps a DuckDB connection used as both an input source and an output
// sink.
type DB struct {
	conn   *sql.DB
	path   string
	logger zerolog.Logger
}

// Open opens (or creates) a DuckDB database and verifies the connection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = MemoryPath
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "2GB"
	}

	// Ensure parent directory exists for database file
	if cfg.Path != MemoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Auto-install/auto-load stay off: the pipeline needs no extensions and
	// must not reach the network.
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		path:   cfg.Path,
		logger: logger.With().Str("component", "database").Logger(),
	}
	db.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.logger.Debug().Str("path", cfg.Path).Int("threads", threads).Msg("duckdb opened")
	return db, nil
}

// configureConnectionPool sizes the pool for the batch workload. In-memory
// databases run on a single connection.
func (db *DB) configureConnectionPool() {
	if db.path == MemoryPath {
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		return
	}
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying SQL connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database path.
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Close checkpoints a file database and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.path != MemoryPath {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			// Best effort; the WAL is replayed on next open.
			db.logger.Warn().Err(err).Msg("failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}
