// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/cultivar/internal/cache"
	"github.com/tomtom215/cultivar/internal/database"
	"github.com/tomtom215/cultivar/internal/models"
)

func TestLoader_CSVWithCache(t *testing.T) {
	t.Parallel()

	txPath := writeFile(t, "tx.csv", transactionsCSV)
	custPath := writeFile(t, "customers.csv", "Customer_ID,Monetary,Frequency\nC1,1150.5,2\nC2,300,1\n")

	mem := cache.New(time.Minute)
	defer mem.Close()

	loader := NewLoader(Source{TransactionsPath: txPath, CustomersPath: custPath}, mem, zerolog.Nop())
	ctx := context.Background()

	first, stats, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.CacheHit {
		t.Error("first Load() should miss the cache")
	}
	if len(first.Transactions) != 3 || len(first.Customers) != 2 {
		t.Fatalf("snapshot = %d transactions, %d customers; want 3, 2", len(first.Transactions), len(first.Customers))
	}
	if len(first.Fingerprint) != 64 {
		t.Errorf("Fingerprint = %q, want hex SHA-256", first.Fingerprint)
	}

	second, stats, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if !stats.CacheHit {
		t.Error("second Load() should hit the cache")
	}
	if second.Fingerprint != first.Fingerprint || !second.Transactions[0].Date.Equal(first.Transactions[0].Date) {
		t.Errorf("cached snapshot differs: %+v", second.Transactions[0])
	}

	// Changing an input changes the fingerprint.
	if err := os.WriteFile(custPath, []byte("Customer_ID,Monetary,Frequency\nC1,1,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third, stats, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("third Load() error = %v", err)
	}
	if stats.CacheHit || third.Fingerprint == first.Fingerprint {
		t.Error("modified input should miss the cache")
	}
}

func TestLoader_CorruptCacheEntry(t *testing.T) {
	t.Parallel()

	txPath := writeFile(t, "tx.csv", transactionsCSV)
	src := Source{TransactionsPath: txPath}
	fp, err := src.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	mem := cache.New(time.Minute)
	defer mem.Close()
	mem.Set(fp, []byte("{not json"))

	snap, stats, err := NewLoader(src, mem, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.CacheHit || len(snap.Transactions) != 3 {
		t.Errorf("Load() = hit %v, %d transactions; want re-parse", stats.CacheHit, len(snap.Transactions))
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, _, err := NewLoader(Source{}, nil, zerolog.Nop()).Load(ctx); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("empty source error = %v, want ErrNoTransactions", err)
	}

	missing := filepath.Join(t.TempDir(), "absent.csv")
	if _, _, err := NewLoader(Source{TransactionsPath: missing}, nil, zerolog.Nop()).Load(ctx); err == nil {
		t.Error("missing file should fail")
	}

	parquet := writeFile(t, "tx.parquet", "x")
	if _, _, err := NewLoader(Source{TransactionsPath: parquet}, nil, zerolog.Nop()).Load(ctx); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("parquet error = %v, want ErrUnsupportedSource", err)
	}

	bad := writeFile(t, "tx.csv", "Customer_ID,Date\nC1,2024-01-01\n")
	_, _, err := NewLoader(Source{TransactionsPath: bad}, nil, zerolog.Nop()).Load(ctx)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("bad header error = %v, want ErrMissingColumn", err)
	}
}

func TestLoader_XLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tx.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Customer_ID", "Date", "Revenue", "Product(s)", "Order #"},
		{"C1", "2024-03-01", 1500, "Layer feed", "A-1"},
		{"C2", 45352, 99.5, "Tomato seedlings", "A-2"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	_ = f.Close()

	snap, _, err := NewLoader(Source{TransactionsPath: path}, nil, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(snap.Transactions))
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range snap.Transactions {
		if !tx.Date.Equal(want) {
			t.Errorf("%s Date = %v, want %v", tx.CustomerID, tx.Date, want)
		}
	}
	if snap.Transactions[1].Revenue != 99.5 {
		t.Errorf("Revenue = %v, want 99.5", snap.Transactions[1].Revenue)
	}
}

func TestLoader_DuckDB(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "input.duckdb")

	db, err := database.Open(ctx, database.DefaultConfig(path), zerolog.Nop())
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	txs := []models.Transaction{
		{CustomerID: "C1", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Revenue: 10, Product: "Urea", OrderID: "1"},
		{CustomerID: "C2", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Revenue: 20, Product: "Pump", OrderID: "2"},
	}
	if err := db.WriteTable(ctx, models.TransactionsTable("transactions", txs)); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src := Source{TransactionsPath: path, TransactionsTable: "transactions", CustomersTable: "customers"}
	snap, _, err := NewLoader(src, nil, zerolog.Nop()).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Transactions) != 2 || snap.Transactions[1].Product != "Pump" || !snap.Transactions[0].Date.Equal(txs[0].Date) {
		t.Errorf("transactions = %+v", snap.Transactions)
	}
}
