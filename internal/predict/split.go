// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// testCount returns the held-out size for n rows, keeping at least one row
// on each side.
func testCount(n int, fraction float64) int {
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	return k
}

// RandomSplit shuffles 0..n-1 and returns sorted train and test indices.
func RandomSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split", ErrInsufficientData, n)
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security
	perm := rng.Perm(n)
	k := testCount(n, testFraction)
	test = append(test, perm[:k]...)
	train = append(train, perm[k:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// StratifiedSplit splits each class separately so train and test keep the
// class balance. Every class needs at least two members.
func StratifiedSplit(labels []bool, testFraction float64, seed int64) (train, test []int, err error) {
	var pos, neg []int
	for i, l := range labels {
		if l {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	if len(pos) < 2 || len(neg) < 2 {
		return nil, nil, fmt.Errorf("%w: stratified split needs two rows per class, got %d positive and %d negative",
			ErrInsufficientData, len(pos), len(neg))
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security
	for _, class := range [][]int{neg, pos} {
		rng.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })
		k := testCount(len(class), testFraction)
		test = append(test, class[:k]...)
		train = append(train, class[k:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

func pickRows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func pickValues(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
