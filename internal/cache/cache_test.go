// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// backends returns one fresh instance of every persistent-capable backend.
func backends(t *testing.T, ttl time.Duration) map[string]Cacher {
	t.Helper()

	badgerCache, err := OpenBadger("", ttl, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	mem := New(ttl)

	t.Cleanup(func() {
		_ = badgerCache.Close()
		_ = mem.Close()
	})
	return map[string]Cacher{"memory": mem, "badger": badgerCache}
}

func TestCacher_BasicOperations(t *testing.T) {
	for name, c := range backends(t, time.Minute) {
		t.Run(name, func(t *testing.T) {
			c.Set("key1", []byte("value1"))
			value, ok := c.Get("key1")
			if !ok {
				t.Fatal("expected key1 to exist")
			}
			if !bytes.Equal(value, []byte("value1")) {
				t.Errorf("Get(key1) = %q, want value1", value)
			}

			if _, ok := c.Get("key2"); ok {
				t.Error("expected key2 to not exist")
			}

			stats := c.GetStats()
			if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 1 {
				t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 key", stats)
			}
			if got := c.HitRate(); got != 50 {
				t.Errorf("HitRate() = %v, want 50", got)
			}
		})
	}
}

func TestCacher_DeleteAndClear(t *testing.T) {
	for name, c := range backends(t, time.Minute) {
		t.Run(name, func(t *testing.T) {
			c.Set("a", []byte("1"))
			c.Set("b", []byte("2"))
			c.Set("c", []byte("3"))

			c.Delete("a")
			if _, ok := c.Get("a"); ok {
				t.Error("expected a to be deleted")
			}

			c.Clear()
			for _, key := range []string{"b", "c"} {
				if _, ok := c.Get(key); ok {
					t.Errorf("expected %s to be cleared", key)
				}
			}
			if keys := c.GetStats().TotalKeys; keys != 0 {
				t.Errorf("TotalKeys = %d after Clear, want 0", keys)
			}
		})
	}
}

func TestCache_Expiration(t *testing.T) {
	t.Parallel()

	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", []byte("value1"))
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected key1 to exist immediately after set")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be expired")
	}
	if ev := c.GetStats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}
}

func TestCache_Cleanup(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL("old", []byte("x"), -time.Second)
	c.Set("fresh", []byte("y"))
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 || stats.Evictions != 1 {
		t.Errorf("stats after cleanup = %+v, want 1 key, 1 eviction", stats)
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestNewCacher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		check   func(t *testing.T, c Cacher)
	}{
		{
			name: "none",
			cfg:  Config{Backend: BackendNone},
			check: func(t *testing.T, c Cacher) {
				c.Set("k", []byte("v"))
				if _, ok := c.Get("k"); ok {
					t.Error("Nop cache should never hit")
				}
			},
		},
		{
			name: "memory",
			cfg:  Config{Backend: BackendMemory},
			check: func(t *testing.T, c Cacher) {
				if _, ok := c.(*Cache); !ok {
					t.Errorf("got %T, want *Cache", c)
				}
			},
		},
		{
			name: "badger",
			cfg:  Config{Backend: BackendBadger, Dir: t.TempDir(), TTL: time.Minute},
			check: func(t *testing.T, c Cacher) {
				if _, ok := c.(*BadgerCache); !ok {
					t.Errorf("got %T, want *BadgerCache", c)
				}
			},
		},
		{
			name:    "unknown",
			cfg:     Config{Backend: "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewCacher(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCacher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			tt.check(t, c)
		})
	}
}

func TestBadgerCache_Persists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := OpenBadger(dir, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	c.Set("fp", []byte("snapshot"))
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadger(dir, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("fp")
	if !ok || string(got) != "snapshot" {
		t.Errorf("Get(fp) after reopen = %q, %v", got, ok)
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("snapshot", map[string]string{"path": "a.csv"})
	b := GenerateKey("snapshot", map[string]string{"path": "a.csv"})
	c := GenerateKey("snapshot", map[string]string{"path": "b.csv"})

	if a != b {
		t.Error("GenerateKey() should be deterministic")
	}
	if a == c {
		t.Error("GenerateKey() should differ for different params")
	}
	if !strings.HasPrefix(a, "snapshot:") {
		t.Errorf("GenerateKey() = %q, want snapshot: prefix", a)
	}
}
