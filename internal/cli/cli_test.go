// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cultivar/internal/models"
)

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CULTIVAR_CACHE__BACKEND", "none")

	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error", "--config", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand("test")
	want := map[string]bool{"run": false, "schedule": false, "generate": false, "models": false, "version": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s missing", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "cultivar test") {
		t.Errorf("version output = %q", out)
	}
}

func TestGenerateAndRun(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	output := filepath.Join(dir, "output")

	out, err := execute(t, "generate", "--customers", "60", "--out", data, "--no-progress")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	for _, name := range []string{models.TableTransactions, models.TableCustomers} {
		if _, err := os.Stat(filepath.Join(data, name+".csv")); err != nil {
			t.Fatalf("generated %s missing: %v", name, err)
		}
	}

	out, err = execute(t, "run",
		"-t", filepath.Join(data, "transactions.csv"),
		"-c", filepath.Join(data, "customers.csv"),
		"-o", output,
		"--xlsx", "--no-progress")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{"Stages:", "features", models.TableScoredCustomers} {
		if !strings.Contains(out, want) {
			t.Errorf("run summary missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{models.TableScoredCustomers + ".csv", "cultivar_results.xlsx", "run_report.json"} {
		if _, err := os.Stat(filepath.Join(output, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestRun_RequiresTransactions(t *testing.T) {
	t.Setenv("CULTIVAR_INPUT__TRANSACTIONS_PATH", "")
	_, err := execute(t, "run", "-o", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "transactions") {
		t.Errorf("run without input: err = %v", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"--format", "parquet"}},
		{"bad date", []string{"--start", "2024-13-01"}},
		{"reversed window", []string{"--start", "2024-06-01", "--end", "2024-01-01"}},
		{"no customers", []string{"--customers", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "--no-progress", "--out", t.TempDir()}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"6h", 6 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{" 7d ", 7 * 24 * time.Hour, false},
		{"0d", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInterval(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInterval(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseInterval(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metrics map[string]float64
		want    string
	}{
		{"empty", nil, ""},
		{"sorted keys", map[string]float64{"r2": 0.5, "mae": 12}, "mae=12 r2=0.5"},
		{"thousands", map[string]float64{"rmse": 12345.5}, "rmse=12,345.5"},
		{"large counts", map[string]float64{"mae": 1250000}, "mae=1,250,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetrics(tt.metrics); got != tt.want {
				t.Errorf("formatMetrics() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelsCommand_Empty(t *testing.T) {
	out, err := execute(t, "models", "--dir", t.TempDir())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if !strings.Contains(out, "No models stored") {
		t.Errorf("models output = %q", out)
	}
}
