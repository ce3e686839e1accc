// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/cultivar/internal/models"
)

func sampleTable(name string) *models.Table {
	return &models.Table{
		Name: name,
		Columns: []models.Column{
			{Name: "Customer_ID", Type: models.TypeString},
			{Name: "Score", Type: models.TypeFloat},
			{Name: "Orders", Type: models.TypeInt},
			{Name: "Last_Purchase", Type: models.TypeTime},
			{Name: "Note", Type: models.TypeString},
		},
		Rows: [][]any{
			{"C1", 0.25, int64(3), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "a, b"},
			{"C2", 1.0, int64(1), time.Time{}, nil},
		},
	}
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"float", 0.1, "0.1"},
		{"whole float", 2.0, "2"},
		{"int64", int64(-4), "-4"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
		{"zero time", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatCell(tt.in); got != tt.want {
				t.Errorf("FormatCell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCSVSink_Write(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewCSVSink(dir)
	if err != nil {
		t.Fatalf("NewCSVSink() error = %v", err)
	}

	if err := sink.Write(context.Background(), []*models.Table{sampleTable("scores")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "scores.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Customer_ID,Score,Orders,Last_Purchase,Note\n" +
		"C1,0.25,3,2024-03-01 00:00:00,\"a, b\"\n" +
		"C2,1,1,,\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temporary files left behind?)", len(entries))
	}
}

func TestCSVSink_Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewCSVSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	path, err := sink.WriteTable(sampleTable("scores"))
	if err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)
	if _, err := sink.WriteTable(sampleTable("scores")); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Error("rewriting the same table changed the file")
	}
}

func TestCSVSink_Cancelled(t *testing.T) {
	t.Parallel()

	sink, err := NewCSVSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Write(ctx, []*models.Table{sampleTable("scores")}); err == nil {
		t.Error("Write() with cancelled context should fail")
	}
}

func TestXLSXSink_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report", "results.xlsx")
	long := "top_recommendations_per_customer"
	tables := []*models.Table{sampleTable("scores"), sampleTable(long)}

	if err := NewXLSXSink(path).Write(context.Background(), tables); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "scores" || sheets[1] != long[:31] {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("scores")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Customer_ID" || rows[1][0] != "C1" || rows[1][3] != "2024-03-01 00:00:00" {
		t.Errorf("unexpected sheet contents: %v", rows)
	}
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	used := map[string]bool{}
	long := strings.Repeat("x", 40)

	if got := SheetName("short", used); got != "short" {
		t.Errorf("SheetName(short) = %q", got)
	}
	first := SheetName(long, used)
	second := SheetName(long, used)
	if len(first) != 31 || len(second) != 31 {
		t.Errorf("lengths = %d, %d, want 31", len(first), len(second))
	}
	if first == second || !strings.HasSuffix(second, "_2") {
		t.Errorf("duplicate not suffixed: %q, %q", first, second)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	in := map[string]any{"run_id": "abc", "rows": 3}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if out["run_id"] != "abc" || out["rows"] != float64(3) {
		t.Errorf("decoded = %v", out)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("report should end with a newline")
	}
}
