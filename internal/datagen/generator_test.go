// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package datagen

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Customers = 60
	return cfg
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := Generate(context.Background(), smallConfig(), nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(context.Background(), smallConfig(), nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different snapshots")
	}

	other := smallConfig()
	other.Seed = 7
	c, err := Generate(context.Background(), other, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Transactions, c.Transactions) {
		t.Error("different seeds produced identical transactions")
	}
}

func TestGenerate_Consistency(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	var calls, lastDone int
	snap, err := Generate(context.Background(), cfg, func(done, total int) {
		calls++
		lastDone = done
		if total != cfg.Customers {
			t.Errorf("progress total = %d, want %d", total, cfg.Customers)
		}
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if calls != cfg.Customers || lastDone != cfg.Customers {
		t.Errorf("progress calls = %d, last = %d", calls, lastDone)
	}
	if len(snap.Customers) != cfg.Customers {
		t.Fatalf("customers = %d, want %d", len(snap.Customers), cfg.Customers)
	}

	orders := map[string]map[string]bool{}
	for _, tx := range snap.Transactions {
		if tx.Date.Before(cfg.Start) || tx.Date.After(cfg.End) {
			t.Errorf("transaction date %v outside window", tx.Date)
		}
		if tx.Product == "" || tx.OrderID == "" {
			t.Errorf("incomplete transaction %+v", tx)
		}
		if orders[tx.CustomerID] == nil {
			orders[tx.CustomerID] = map[string]bool{}
		}
		orders[tx.CustomerID][tx.OrderID] = true
	}
	for _, c := range snap.Customers {
		if got := len(orders[c.CustomerID]); got != c.Frequency {
			t.Errorf("%s: Frequency = %d, distinct orders = %d", c.CustomerID, c.Frequency, got)
		}
		if c.AvgOrderValue == nil || c.PurchaseRate == nil || c.TotalItemsSold == nil {
			t.Errorf("%s: optional columns missing", c.CustomerID)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no customers", func(c *Config) { c.Customers = 0 }},
		{"inverted window", func(c *Config) { c.End = c.Start.Add(-time.Hour) }},
		{"refund rate", func(c *Config) { c.RefundRate = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := Generate(context.Background(), cfg, nil); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Generate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, DefaultConfig(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() with cancelled context error = %v", err)
	}
}
