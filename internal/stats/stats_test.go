// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package stats

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"median odd", []float64{5, 1, 3}, 0.5, 3},
		{"p20 of 1..5", []float64{1, 2, 3, 4, 5}, 0.2, 1.8},
		{"p90 of 1..10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"min", []float64{3, 1, 2}, 0, 1},
		{"max", []float64{3, 1, 2}, 1, 3},
		{"single", []float64{7}, 0.75, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Quantile(tt.values, tt.p); !approx(got, tt.want) {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}

	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("Quantile(nil) should be NaN")
	}
}

func TestQuantileDoesNotMutate(t *testing.T) {
	t.Parallel()
	values := []float64{3, 1, 2}
	_ = Quantiles(values, 0.25, 0.75)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was mutated: %v", values)
	}
}

func TestBin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     float64
		edges []float64
		want  int
	}{
		{"below first edge", 0.5, []float64{1, 2, 3, 4}, 1},
		{"on edge is right-closed", 2, []float64{1, 2, 3, 4}, 2},
		{"above last edge", 9, []float64{1, 2, 3, 4}, 5},
		{"duplicate edges lowest bin", 1, []float64{1, 1, 1, 2}, 1},
		{"between duplicates and next", 1.5, []float64{1, 1, 1, 2}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Bin(tt.v, tt.edges); got != tt.want {
				t.Errorf("Bin(%v, %v) = %d, want %d", tt.v, tt.edges, got, tt.want)
			}
		})
	}
}

func TestQCutRange(t *testing.T) {
	t.Parallel()

	values := []float64{1, 1, 1, 1, 1, 1, 2, 50, 300, 1000}
	for i, s := range QCut(values, 5) {
		if s < 1 || s > 5 {
			t.Errorf("score[%d] = %d out of 1..5", i, s)
		}
	}

	// Distinct ranks fill all five bins evenly
	ranks := RankFirst([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	counts := map[int]int{}
	for _, s := range QCut(ranks, 5) {
		counts[s]++
	}
	for b := 1; b <= 5; b++ {
		if counts[b] != 2 {
			t.Errorf("bin %d has %d members, want 2", b, counts[b])
		}
	}
}

func TestRankFirst(t *testing.T) {
	t.Parallel()

	got := RankFirst([]float64{3, 1, 3, 2})
	want := []float64{3, 1, 4, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RankFirst = %v, want %v", got, want)
		}
	}
}

func TestStandardize(t *testing.T) {
	t.Parallel()

	rows := [][]float64{{1, 5}, {3, 5}}
	z := Standardize(rows)

	if !approx(z[0][0], -1) || !approx(z[1][0], 1) {
		t.Errorf("column 0 = %v,%v, want -1,1", z[0][0], z[1][0])
	}
	if z[0][1] != 0 || z[1][1] != 0 {
		t.Errorf("zero-variance column should be 0, got %v,%v", z[0][1], z[1][1])
	}
}

func TestAUC(t *testing.T) {
	t.Parallel()

	auc, err := AUC([]float64{0.1, 0.35, 0.4, 0.8}, []bool{true, false, true, false})
	if err != nil {
		t.Fatalf("AUC: %v", err)
	}
	if !approx(auc, 0.25) {
		t.Errorf("AUC = %v, want 0.25", auc)
	}

	perfect, err := AUC([]float64{0.9, 0.1, 0.8, 0.2}, []bool{true, false, true, false})
	if err != nil {
		t.Fatalf("AUC: %v", err)
	}
	if !approx(perfect, 1) {
		t.Errorf("perfect AUC = %v, want 1", perfect)
	}

	if _, err := AUC([]float64{0.1, 0.2}, []bool{true, true}); !errors.Is(err, ErrSingleClass) {
		t.Errorf("expected ErrSingleClass, got %v", err)
	}
}

func TestRegressionMetrics(t *testing.T) {
	t.Parallel()

	actual := []float64{1, 2, 3, 4}
	if got := R2(actual, actual); !approx(got, 1) {
		t.Errorf("R2 perfect = %v, want 1", got)
	}

	pred := []float64{2, 2, 2, 2}
	if got := MAE(pred, actual); !approx(got, 1) {
		t.Errorf("MAE = %v, want 1", got)
	}
	if got := RMSE(pred, actual); !approx(got, math.Sqrt(1.5)) {
		t.Errorf("RMSE = %v, want sqrt(1.5)", got)
	}
	if got := R2([]float64{5, 5}, []float64{5, 5}); got != 1 {
		t.Errorf("R2 on constant perfect fit = %v, want 1", got)
	}
	if got := R2([]float64{4, 5}, []float64{5, 5}); got != 0 {
		t.Errorf("R2 on constant imperfect fit = %v, want 0", got)
	}
}

func TestAccuracy(t *testing.T) {
	t.Parallel()
	got := Accuracy([]float64{0.9, 0.4, 0.6, 0.1}, []bool{true, false, false, false})
	if !approx(got, 0.75) {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
}
