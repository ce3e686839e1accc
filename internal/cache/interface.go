// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Cacher defines the interface for snapshot cache implementations.
// Both Cache (in-memory TTL) and BadgerCache (persistent) implement it, so the
// loader does not care which backend is configured.
//
// Values are opaque encoded bytes; callers own the encoding.
//
// Usage:
//
//	c, err := cache.NewCacher(cache.Config{Backend: cache.BackendMemory, TTL: time.Hour}, logger)
//	defer c.Close()
//
//	c.Set(fingerprint, encoded)
//	if data, ok := c.Get(fingerprint); ok {
//	    // decode data
//	}
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) ([]byte, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value []byte)

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value []byte, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64

	// Close releases the backend's resources.
	Close() error
}

// Backend names a cache implementation.
type Backend string

const (
	// BackendNone disables caching.
	BackendNone Backend = "none"

	// BackendMemory is the in-process TTL cache. Entries live as long as the
	// process, which suits the scheduled runner.
	BackendMemory Backend = "memory"

	// BackendBadger persists entries in a BadgerDB directory so repeated CLI
	// runs over the same inputs skip parsing.
	BackendBadger Backend = "badger"
)

// Config holds configuration for creating a cache.
type Config struct {
	Backend Backend
	// Dir is the BadgerDB directory (badger backend only).
	Dir string
	// TTL is the default time-to-live for cache entries.
	TTL time.Duration
}

// NewCacher creates a cache based on the configuration. BackendNone returns
// a Nop cache that never hits.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacher(cfg Config, logger zerolog.Logger) (Cacher, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	switch cfg.Backend {
	case BackendNone, "":
		return Nop{}, nil
	case BackendMemory:
		return New(cfg.TTL), nil
	case BackendBadger:
		return OpenBadger(cfg.Dir, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop is a Cacher that stores nothing.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)                { return nil, false }
func (Nop) Set(string, []byte)                       {}
func (Nop) SetWithTTL(string, []byte, time.Duration) {}
func (Nop) Delete(string)                            {}
func (Nop) Clear()                                   {}
func (Nop) GetStats() Stats                          { return Stats{} }
func (Nop) HitRate() float64                         { return 0 }
func (Nop) Close() error                             { return nil }

// Verify interface implementations at compile time
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*BadgerCache)(nil)
	_ Cacher = Nop{}
)
