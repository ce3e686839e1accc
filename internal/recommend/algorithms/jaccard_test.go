// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package algorithms

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/recommend"
)

// basketMatrix is a small purchase matrix:
//
//	     Books Games Music
//	C1     2     1     0
//	C2     1     1     0
//	C3     1     0     1
//	C4     0     0     0
func basketMatrix() *recommend.Matrix {
	return &recommend.Matrix{
		CustomerIDs: []string{"C1", "C2", "C3", "C4"},
		Categories:  []string{"Books", "Games", "Music"},
		Counts: [][]float64{
			{2, 1, 0},
			{1, 1, 0},
			{1, 0, 1},
			{0, 0, 0},
		},
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   []float64
		want   float64
		wantOK bool
	}{
		{"weighted overlap", []float64{2, 1, 0}, []float64{1, 1, 0}, 2.0 / 3, true},
		{"partial overlap", []float64{2, 1, 0}, []float64{1, 0, 1}, 0.25, true},
		{"disjoint", []float64{1, 0}, []float64{0, 3}, 0, true},
		{"one side empty", []float64{0, 0}, []float64{1, 2}, 0, true},
		{"identical", []float64{3, 1, 4}, []float64{3, 1, 4}, 1, true},
		{"zero union", []float64{0, 0}, []float64{0, 0}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Similarity(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Similarity() ok = %v, want %v", ok, tt.wantOK)
			}
			if !approxEqual(got, tt.want) {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarity_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data
	for i := 0; i < 200; i++ {
		a := make([]float64, 6)
		b := make([]float64, 6)
		for j := range a {
			a[j] = float64(rng.Intn(4))
			b[j] = float64(rng.Intn(4))
		}

		ab, okAB := Similarity(a, b)
		ba, okBA := Similarity(b, a)
		if okAB != okBA || ab != ba {
			t.Fatalf("Similarity not symmetric for %v, %v: %v vs %v", a, b, ab, ba)
		}
		if okAB && (ab < 0 || ab > 1) {
			t.Fatalf("Similarity(%v, %v) = %v, outside [0, 1]", a, b, ab)
		}
		if self, ok := Similarity(a, a); ok && self != 1 {
			t.Fatalf("Similarity(a, a) = %v, want 1", self)
		}
	}
}

func TestJaccardCF_Predict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cf := NewJaccardCF(DefaultJaccardConfig())
	if cf.Name() != models.MethodCollaborative {
		t.Errorf("Name() = %q, want %q", cf.Name(), models.MethodCollaborative)
	}
	if err := cf.Train(ctx, basketMatrix()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !cf.IsTrained() || cf.Version() != 1 {
		t.Errorf("IsTrained() = %v, Version() = %d", cf.IsTrained(), cf.Version())
	}

	t.Run("neighbour categories not yet bought", func(t *testing.T) {
		t.Parallel()
		// C2's neighbours: C1 (2/3), C3 (1/3), C4 (0). Only C3 bought Music.
		got, err := cf.Predict(ctx, 1, 10)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if len(got) != 1 || got[0].Category != 2 || !approxEqual(got[0].Score, 1.0/3) {
			t.Errorf("Predict(C2) = %+v, want [{Music 1/3}]", got)
		}
	})

	t.Run("zero-similarity neighbours contribute zero", func(t *testing.T) {
		t.Parallel()
		got, err := cf.Predict(ctx, 3, 10)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Predict(C4) = %+v, want 3 candidates", got)
		}
		for i, c := range got {
			if c.Category != i || c.Score != 0 {
				t.Errorf("Predict(C4)[%d] = %+v, want {%d 0}", i, c, i)
			}
		}
	})

	t.Run("k limits output", func(t *testing.T) {
		t.Parallel()
		got, err := cf.Predict(ctx, 3, 1)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("Predict(k=1) returned %d candidates", len(got))
		}
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		if _, err := cf.Predict(ctx, 9, 10); err == nil {
			t.Error("Predict() with out-of-range row should fail")
		}
	})
}

func TestJaccardCF_NeighbourLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cf := NewJaccardCF(JaccardConfig{K: 1})
	if err := cf.Train(ctx, basketMatrix()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	// With one neighbour C2 only sees C1, who bought nothing new for it.
	got, err := cf.Predict(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Predict() = %+v, want none", got)
	}
}

func TestJaccardCF_Errors(t *testing.T) {
	t.Parallel()

	cf := NewJaccardCF(JaccardConfig{})
	if cf.config.K != 20 {
		t.Errorf("default K = %d, want 20", cf.config.K)
	}

	got, err := cf.Predict(context.Background(), 0, 5)
	if err != nil || got != nil {
		t.Errorf("untrained Predict() = %v, %v; want nil, nil", got, err)
	}

	if err := cf.Train(context.Background(), &recommend.Matrix{}); err == nil {
		t.Error("Train() with empty matrix should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cf.Train(ctx, basketMatrix()); err == nil {
		t.Error("Train() with cancelled context should fail")
	}
}
