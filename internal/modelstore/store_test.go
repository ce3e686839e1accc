// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package modelstore

import (
	"context"
	"encoding/gob"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"
)

type testModel struct {
	Weights []float64
	Names   []string
}

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	v1 := testModel{Weights: []float64{0.1, 0.2}, Names: []string{"Recency", "Frequency"}}
	meta, err := s.Save(ctx, "churn", v1, Metadata{
		TrainedAt:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		TrainingSamples: 80,
		Metrics:         map[string]float64{"auc": 0.91},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Version != 1 || meta.Name != "churn" || meta.Checksum == "" || meta.SizeBytes == 0 {
		t.Errorf("metadata = %+v", meta)
	}

	v2 := testModel{Weights: []float64{0.3}}
	if meta, err = s.Save(ctx, "churn", v2, Metadata{}); err != nil || meta.Version != 2 {
		t.Fatalf("second Save() = %+v, %v; want version 2", meta, err)
	}

	var latest testModel
	got, err := s.Load(ctx, "churn", 0, &latest)
	if err != nil {
		t.Fatalf("Load(latest) error = %v", err)
	}
	if got.Version != 2 || !reflect.DeepEqual(latest, v2) {
		t.Errorf("Load(latest) = v%d %+v, want v2 %+v", got.Version, latest, v2)
	}

	var first testModel
	got, err = s.Load(ctx, "churn", 1, &first)
	if err != nil {
		t.Fatalf("Load(1) error = %v", err)
	}
	if !reflect.DeepEqual(first, v1) || got.Metrics["auc"] != 0.91 || got.TrainingSamples != 80 {
		t.Errorf("Load(1) = %+v, meta %+v", first, got)
	}
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	var m testModel
	if _, err := s.Load(ctx, "clv", 0, &m); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load(unknown) error = %v, want ErrModelNotFound", err)
	}
	if _, err := s.Save(ctx, "clv", testModel{}, Metadata{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "clv", 7, &m); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load(v7) error = %v, want ErrModelNotFound", err)
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := s.Save(ctx, "churn", testModel{Weights: []float64{1}}, Metadata{}); err != nil {
		t.Fatal(err)
	}

	// Rewrite the file with a forged checksum.
	path := s.modelPath("churn", 1)
	sf, err := s.readFile("churn", 1)
	if err != nil {
		t.Fatal(err)
	}
	sf.Metadata.Checksum = "deadbeef"
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	var m testModel
	if _, err := s.Load(ctx, "churn", 1, &m); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Load() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestStore_PruneAndReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := s.Save(ctx, "clv", testModel{Weights: []float64{float64(i)}}, Metadata{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Save(ctx, "churn", testModel{}, Metadata{}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Prune(ctx, "clv", 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed %d, want 2", removed)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if v, ok := reopened.LatestVersion("clv"); !ok || v != 4 {
		t.Errorf("LatestVersion(clv) = %d, %v; want 4", v, ok)
	}
	var m testModel
	if _, err := reopened.Load(ctx, "clv", 2, &m); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("pruned v2 error = %v, want ErrModelNotFound", err)
	}

	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "churn" || list[1].Name != "clv" || list[1].Version != 4 {
		t.Errorf("List() = %+v", list)
	}
}

func TestParseModelFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		name    string
		version int
	}{
		{"churn_v3", "churn", 3},
		{"my_model_v12", "my_model", 12},
		{"churn", "", 0},
		{"churn_vx", "", 0},
		{"_v1", "", 0},
		{"churn_v0", "", 0},
	}
	for _, tt := range tests {
		name, version := parseModelFilename(tt.in)
		if name != tt.name || version != tt.version {
			t.Errorf("parseModelFilename(%q) = %q, %d; want %q, %d", tt.in, name, version, tt.name, tt.version)
		}
	}
}
