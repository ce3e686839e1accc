// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// keyPrefix namespaces cache keys inside the Badger keyspace.
const keyPrefix = "snapshot:"

// BadgerCache is a persistent Cacher backed by BadgerDB. Expiry uses
// Badger's native entry TTL.
type BadgerCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
	counters
}

// OpenBadger opens (or creates) a BadgerDB cache in dir. An empty dir opens
// an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(dir string, ttl time.Duration, logger zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB cache: %w", err)
	}

	c := &BadgerCache{
		db:     db,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
	c.logger.Debug().
		Str("dir", dir).
		Dur("ttl", ttl).
		Msg("badger cache opened")
	return c, nil
}

// Get retrieves a value. Read failures are logged and reported as misses.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return out, true
}

// Set stores a value with the default TTL.
func (c *BadgerCache) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL. Write failures are logged;
// the cache is an optimisation and never fails a run.
func (c *BadgerCache) SetWithTTL(key string, value []byte, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Delete removes a value.
func (c *BadgerCache) Delete(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		return
	}
	c.evictions.Add(1)
}

// Clear removes every cached snapshot.
func (c *BadgerCache) Clear() {
	if err := c.db.DropPrefix([]byte(keyPrefix)); err != nil {
		c.logger.Warn().Err(err).Msg("cache clear failed")
	}
}

// GetStats returns cache statistics. TotalKeys counts live entries.
func (c *BadgerCache) GetStats() Stats {
	var keys int64
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys++
		}
		return nil
	})

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		TotalKeys: keys,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *BadgerCache) HitRate() float64 {
	return c.hitRate()
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB cache: %w", err)
	}
	return nil
}
