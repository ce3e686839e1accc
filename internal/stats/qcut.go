// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package stats

import (
	"cmp"
	"slices"
)

// Breakpoints returns the interior edges that split values into q
// equal-frequency bins: the type-7 quantiles at 1/q, 2/q, ..., (q-1)/q.
func Breakpoints(values []float64, q int) []float64 {
	if q < 2 {
		return nil
	}
	ps := make([]float64, q-1)
	for i := range ps {
		ps[i] = float64(i+1) / float64(q)
	}
	return Quantiles(values, ps...)
}

// Bin returns the 1-based bin of v for sorted interior edges. Bins are
// right-closed, so v equal to an edge falls in the lower bin, and with
// duplicate edges v goes to the lowest bin whose upper edge it does not
// exceed.
func Bin(v float64, edges []float64) int {
	bin := 1
	for _, e := range edges {
		if v > e {
			bin++
		}
	}
	return bin
}

// QCut assigns each value its quantile bin in 1..q.
func QCut(values []float64, q int) []int {
	edges := Breakpoints(values, q)
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = Bin(v, edges)
	}
	return out
}

// RankFirst ranks values 1..n in ascending order, breaking ties by position
// (first occurrence gets the lower rank).
func RankFirst(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[a], values[b])
	})
	ranks := make([]float64, len(values))
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}
