// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler holds per-column population mean and standard deviation.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes column statistics over rows (row-major).
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	cols := len(rows[0])
	s := &Scaler{Mean: make([]float64, cols), Std: make([]float64, cols)}
	col := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
	}
	return s
}

// Transform returns z-scores. Zero-variance columns map to 0.
func (s *Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		z := make([]float64, len(r))
		for j, v := range r {
			if s.Std[j] == 0 || math.IsNaN(s.Std[j]) {
				continue
			}
			z[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = z
	}
	return out
}

// Standardize fits a Scaler on rows and transforms them.
func Standardize(rows [][]float64) [][]float64 {
	return FitScaler(rows).Transform(rows)
}

// SampleStd is the n-1 standard deviation, 0 for fewer than two values.
func SampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Round2 rounds to two decimals, as the summary tables are reported.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
