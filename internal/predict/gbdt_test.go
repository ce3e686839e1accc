// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/tomtom215/cultivar/internal/stats"
)

// stepData returns x = 0..n-1 with a constant second column and y = high
// for x >= n/2, low otherwise.
func stepData(n int, low, high float64) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = []float64{float64(i), 1}
		y[i] = low
		if i >= n/2 {
			y[i] = high
		}
	}
	return x, y
}

func TestFit_SquaredErrorLearnsStep(t *testing.T) {
	t.Parallel()

	x, y := stepData(100, 0, 10)
	cfg := BoostConfig{Trees: 60, LearningRate: 0.1, MaxDepth: 1, Subsample: 1, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 1}

	ens, err := Fit(context.Background(), x, y, []string{"signal", "constant"}, LossSquared, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if ens.Init != 5 {
		t.Errorf("Init = %f, want mean 5", ens.Init)
	}
	if got := ens.Predict([]float64{10, 1}); math.Abs(got-0) > 0.1 {
		t.Errorf("Predict(low) = %f, want ~0", got)
	}
	if got := ens.Predict([]float64{90, 1}); math.Abs(got-10) > 0.1 {
		t.Errorf("Predict(high) = %f, want ~10", got)
	}

	imp := ens.Importances()
	if imp[0].Feature != "signal" || math.Abs(imp[0].Importance-1) > 1e-9 {
		t.Errorf("importances = %+v, want all gain on signal", imp)
	}
	if imp[1].Importance != 0 {
		t.Errorf("constant feature importance = %f, want 0", imp[1].Importance)
	}
}

func TestFit_LogisticSeparates(t *testing.T) {
	t.Parallel()

	x, y := stepData(100, 0, 1)
	cfg := DefaultBoostConfig()
	cfg.MaxDepth = 2

	ens, err := Fit(context.Background(), x, y, []string{"signal", "constant"}, LossLogistic, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if p := ens.Predict([]float64{10, 1}); p > 0.1 {
		t.Errorf("P(low row) = %f, want < 0.1", p)
	}
	if p := ens.Predict([]float64{90, 1}); p < 0.9 {
		t.Errorf("P(high row) = %f, want > 0.9", p)
	}
	for _, p := range ens.PredictAll(x) {
		if p < 0 || p > 1 {
			t.Fatalf("probability %f outside [0,1]", p)
		}
	}
}

func TestFit_RespectsMaxDepth(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	x := make([][]float64, 200)
	y := make([]float64, 200)
	for i := range x {
		x[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		y[i] = x[i][0]*3 + x[i][1] + rng.NormFloat64()*0.1
	}

	cfg := DefaultBoostConfig()
	cfg.Trees = 10
	cfg.MaxDepth = 3
	ens, err := Fit(context.Background(), x, y, []string{"a", "b", "c"}, LossSquared, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	maxNodes := 1<<(cfg.MaxDepth+1) - 1
	for i, tree := range ens.Trees {
		if len(tree.Nodes) > maxNodes {
			t.Errorf("tree %d has %d nodes, limit %d", i, len(tree.Nodes), maxNodes)
		}
	}
}

func TestFit_Deterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	x := make([][]float64, 150)
	y := make([]float64, 150)
	for i := range x {
		x[i] = []float64{rng.Float64(), rng.Float64()}
		if x[i][0]+0.3*rng.Float64() > 0.6 {
			y[i] = 1
		}
	}

	cfg := DefaultBoostConfig()
	a, err := Fit(context.Background(), x, y, []string{"a", "b"}, LossLogistic, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b, err := Fit(context.Background(), x, y, []string{"a", "b"}, LossLogistic, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for i := range x {
		if a.Raw(x[i]) != b.Raw(x[i]) {
			t.Fatalf("row %d: %v != %v", i, a.Raw(x[i]), b.Raw(x[i]))
		}
	}
}

func TestFit_Errors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	x, y := stepData(10, 0, 1)
	ones := make([]float64, 10)
	for i := range ones {
		ones[i] = 1
	}

	tests := []struct {
		name    string
		ctx     context.Context
		x       [][]float64
		y       []float64
		loss    Loss
		wantErr error
	}{
		{"empty", context.Background(), nil, nil, LossSquared, ErrInsufficientData},
		{"single class", context.Background(), x, ones, LossLogistic, stats.ErrSingleClass},
		{"cancelled", cancelled, x, y, LossLogistic, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Fit(tt.ctx, tt.x, tt.y, []string{"a", "b"}, tt.loss, DefaultBoostConfig())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFit_RejectsNonBinaryTarget(t *testing.T) {
	t.Parallel()

	x, y := stepData(10, 0, 2)
	if _, err := Fit(context.Background(), x, y, []string{"a", "b"}, LossLogistic, DefaultBoostConfig()); err == nil {
		t.Fatal("expected error for target outside {0,1}")
	}
}

func TestSplits(t *testing.T) {
	t.Parallel()

	t.Run("random", func(t *testing.T) {
		t.Parallel()
		train, test, err := RandomSplit(10, 0.2, 42)
		if err != nil {
			t.Fatalf("RandomSplit: %v", err)
		}
		if len(train) != 8 || len(test) != 2 {
			t.Fatalf("sizes = %d/%d, want 8/2", len(train), len(test))
		}
		assertPartition(t, 10, train, test)

		again, _, _ := RandomSplit(10, 0.2, 42)
		for i := range train {
			if train[i] != again[i] {
				t.Fatal("split not reproducible for the same seed")
			}
		}
	})

	t.Run("stratified", func(t *testing.T) {
		t.Parallel()
		labels := make([]bool, 100)
		for i := 0; i < 20; i++ {
			labels[i*5] = true
		}
		train, test, err := StratifiedSplit(labels, 0.2, 42)
		if err != nil {
			t.Fatalf("StratifiedSplit: %v", err)
		}
		assertPartition(t, 100, train, test)

		pos := 0
		for _, i := range test {
			if labels[i] {
				pos++
			}
		}
		if len(test) != 20 || pos != 4 {
			t.Errorf("test = %d rows with %d positive, want 20 with 4", len(test), pos)
		}
	})

	t.Run("too few per class", func(t *testing.T) {
		t.Parallel()
		_, _, err := StratifiedSplit([]bool{true, false, false, false}, 0.2, 42)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("err = %v, want ErrInsufficientData", err)
		}
		if _, _, err := RandomSplit(1, 0.2, 42); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("RandomSplit(1) err = %v, want ErrInsufficientData", err)
		}
	})
}

func assertPartition(t *testing.T, n int, train, test []int) {
	t.Helper()
	seen := make(map[int]bool, n)
	for _, part := range [][]int{train, test} {
		for k, i := range part {
			if seen[i] {
				t.Fatalf("index %d in both parts", i)
			}
			seen[i] = true
			if k > 0 && part[k-1] >= i {
				t.Fatalf("indices not sorted: %v", part)
			}
		}
	}
	if len(seen) != n {
		t.Fatalf("partition covers %d of %d rows", len(seen), n)
	}
}
