// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/cache"
	"github.com/tomtom215/cultivar/internal/models"
)

// LoadStats describes one Load call.
type LoadStats struct {
	Fingerprint  string    `json:"fingerprint"`
	Transactions int       `json:"transactions"`
	Customers    int       `json:"customers"`
	CacheHit     bool      `json:"cache_hit"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Duration returns the duration of the load.
func (s *LoadStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the decode rate.
func (s *LoadStats) RecordsPerSecond() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return float64(s.Transactions+s.Customers) / d
}

// Loader reads the input snapshot, consulting a cache keyed by the source
// fingerprint before parsing.
type Loader struct {
	src    Source
	cache  cache.Cacher
	logger zerolog.Logger
}

// NewLoader creates a Loader. A nil cache disables caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(src Source, c cache.Cacher, logger zerolog.Logger) *Loader {
	if c == nil {
		c = cache.Nop{}
	}
	return &Loader{
		src:    src,
		cache:  c,
		logger: logger.With().Str("component", "ingest").Logger(),
	}
}

// Load returns the decoded snapshot. Decoding errors are fatal and carry
// the file, row and column; cache failures only cost a re-parse.
func (l *Loader) Load(ctx context.Context) (*models.Snapshot, *LoadStats, error) {
	stats := &LoadStats{StartTime: time.Now()}
	if l.src.TransactionsPath == "" {
		return nil, stats, ErrNoTransactions
	}

	fp, err := l.src.Fingerprint()
	if err != nil {
		return nil, stats, err
	}
	stats.Fingerprint = fp

	if snap, ok := l.cached(fp); ok {
		stats.CacheHit = true
		stats.Transactions = len(snap.Transactions)
		stats.Customers = len(snap.Customers)
		stats.EndTime = time.Now()
		l.logger.Info().
			Str("fingerprint", fp[:12]).
			Int("transactions", stats.Transactions).
			Msg("snapshot loaded from cache")
		return snap, stats, nil
	}

	snap, err := l.read(ctx)
	if err != nil {
		return nil, stats, err
	}
	snap.Fingerprint = fp
	stats.Transactions = len(snap.Transactions)
	stats.Customers = len(snap.Customers)

	if data, err := json.Marshal(snap); err != nil {
		l.logger.Warn().Err(err).Msg("snapshot encode failed; not cached")
	} else {
		l.cache.Set(fp, data)
	}

	stats.EndTime = time.Now()
	l.logger.Info().
		Str("fingerprint", fp[:12]).
		Int("transactions", stats.Transactions).
		Int("customers", stats.Customers).
		Dur("elapsed", stats.Duration()).
		Msg("snapshot loaded")
	return snap, stats, nil
}

func (l *Loader) cached(fp string) (*models.Snapshot, bool) {
	data, ok := l.cache.Get(fp)
	if !ok {
		return nil, false
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		l.logger.Warn().Err(err).Msg("cached snapshot undecodable; dropping entry")
		l.cache.Delete(fp)
		return nil, false
	}
	return &snap, true
}

func (l *Loader) read(ctx context.Context) (*models.Snapshot, error) {
	txTable, err := ReadTable(ctx, l.src.TransactionsPath, l.src.TransactionsTable, l.logger)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	txs, err := DecodeTransactions(txTable)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{Transactions: txs}
	if l.src.CustomersPath == "" {
		l.logger.Debug().Msg("no customer table; base table will be derived from transactions")
		return snap, nil
	}

	custTable, err := ReadTable(ctx, l.src.CustomersPath, l.src.CustomersTable, l.logger)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	if snap.Customers, err = DecodeCustomers(custTable); err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	return snap, nil
}
