// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns the reference constants
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Segment.Clusters != 5 {
		t.Errorf("Segment.Clusters = %d, want 5", cfg.Segment.Clusters)
	}
	if cfg.Segment.Inits != 10 {
		t.Errorf("Segment.Inits = %d, want 10", cfg.Segment.Inits)
	}
	if cfg.Predict.ChurnThresholdDays != 90 {
		t.Errorf("Predict.ChurnThresholdDays = %d, want 90", cfg.Predict.ChurnThresholdDays)
	}
	if cfg.Predict.Trees != 100 || cfg.Predict.LearningRate != 0.1 || cfg.Predict.MaxDepth != 5 {
		t.Errorf("unexpected boosting defaults: %+v", cfg.Predict)
	}
	if cfg.Recommend.CollaborativeWeight != 0.3 || cfg.Recommend.AssociationWeight != 0.7 {
		t.Errorf("unexpected blend weights: %f/%f", cfg.Recommend.CollaborativeWeight, cfg.Recommend.AssociationWeight)
	}
	if cfg.Recommend.ConfidenceCap != 5.0 {
		t.Errorf("Recommend.ConfidenceCap = %f, want 5.0", cfg.Recommend.ConfidenceCap)
	}
	if cfg.Recommend.CrossSellUplift != 0.2 {
		t.Errorf("Recommend.CrossSellUplift = %f, want 0.2", cfg.Recommend.CrossSellUplift)
	}
	if cfg.Recommend.TargetCustomers != 1000 {
		t.Errorf("Recommend.TargetCustomers = %d, want 1000", cfg.Recommend.TargetCustomers)
	}
	if cfg.Schedule.Interval != 24*time.Hour {
		t.Errorf("Schedule.Interval = %v, want 24h", cfg.Schedule.Interval)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cultivar.yaml")
	yaml := `seed: 7
input:
  transactions_path: data/tx.csv
recommend:
  target_customers: 250
schedule:
  interval: 6h
logging:
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CULTIVAR_RECOMMEND__TARGET_CUSTOMERS", "500")
	t.Setenv("CULTIVAR_SEGMENT__CLUSTERS", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7 from file", cfg.Seed)
	}
	if cfg.Input.TransactionsPath != "data/tx.csv" {
		t.Errorf("TransactionsPath = %q", cfg.Input.TransactionsPath)
	}
	if cfg.Recommend.TargetCustomers != 500 {
		t.Errorf("TargetCustomers = %d, want env override 500", cfg.Recommend.TargetCustomers)
	}
	if cfg.Segment.Clusters != 4 {
		t.Errorf("Clusters = %d, want env override 4", cfg.Segment.Clusters)
	}
	if cfg.Schedule.Interval != 6*time.Hour {
		t.Errorf("Interval = %v, want 6h", cfg.Schedule.Interval)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	// Untouched defaults survive the merge
	if cfg.Recommend.TopN != 5 {
		t.Errorf("TopN = %d, want default 5", cfg.Recommend.TopN)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "weights do not sum to one",
			mutate: func(c *Config) {
				c.Recommend.CollaborativeWeight = 0.5
			},
			wantErr: "must be 1",
		},
		{
			name: "unsupported input type",
			mutate: func(c *Config) {
				c.Input.TransactionsPath = "tx.parquet"
			},
			wantErr: "unsupported file type",
		},
		{
			name: "badger without dir",
			mutate: func(c *Config) {
				c.Cache.Backend = "badger"
				c.Cache.Dir = ""
			},
			wantErr: "dir is required",
		},
		{
			name: "unknown cache backend",
			mutate: func(c *Config) {
				c.Cache.Backend = "redis"
			},
			wantErr: "Backend",
		},
		{
			name: "test fraction out of range",
			mutate: func(c *Config) {
				c.Predict.TestFraction = 1.5
			},
			wantErr: "TestFraction",
		},
		{
			name: "candidates below top n",
			mutate: func(c *Config) {
				c.Recommend.CandidatesPerMethod = 2
			},
			wantErr: "candidates_per_method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CULTIVAR_SEED", "seed"},
		{"CULTIVAR_RECOMMEND__TOP_N", "recommend.top_n"},
		{"CULTIVAR_OUTPUT__POSTGRES_URL", "output.postgres_url"},
		{"CULTIVAR_CONFIG", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
