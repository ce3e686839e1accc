// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"context"
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
)

// Matrix is the customer x category purchase-count matrix. Row order is the
// scored table's row order and column order is its sorted category order.
type Matrix struct {
	CustomerIDs []string
	Categories  []string
	Counts      [][]float64
}

// NewMatrix builds the purchase matrix from the scored customer table.
func NewMatrix(table *models.CustomerTable) *Matrix {
	m := &Matrix{
		CustomerIDs: make([]string, len(table.Rows)),
		Categories:  append([]string(nil), table.CategoryNames...),
		Counts:      make([][]float64, len(table.Rows)),
	}
	for i := range table.Rows {
		r := &table.Rows[i]
		m.CustomerIDs[i] = r.CustomerID
		row := make([]float64, len(m.Categories))
		for c, name := range m.Categories {
			row[c] = float64(r.CategoryCount(name))
		}
		m.Counts[i] = row
	}
	return m
}

// Rows returns the number of customers.
func (m *Matrix) Rows() int {
	return len(m.Counts)
}

// Bought reports whether customer row bought category column c.
func (m *Matrix) Bought(row, c int) bool {
	return m.Counts[row][c] > 0
}

// Candidate is a category scored by one algorithm for one customer.
type Candidate struct {
	Category int
	Score    float64
}

// Algorithm scores categories a customer has not bought yet.
type Algorithm interface {
	// Name is the method tag reported in a recommendation's Reason.
	Name() string

	// Train fits the algorithm to the purchase matrix.
	Train(ctx context.Context, m *Matrix) error

	// Predict returns at most k candidates for customer row, best first.
	Predict(ctx context.Context, row, k int) ([]Candidate, error)

	// IsTrained reports whether Train succeeded.
	IsTrained() bool
}

// Accumulator sums or maximizes candidate scores while remembering the
// order categories were first seen, so ties rank deterministically.
type Accumulator struct {
	scores map[int]float64
	order  []int
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{scores: make(map[int]float64)}
}

func (a *Accumulator) touch(c int) {
	if _, ok := a.scores[c]; !ok {
		a.scores[c] = 0
		a.order = append(a.order, c)
	}
}

// Add adds v to category c.
func (a *Accumulator) Add(c int, v float64) {
	a.touch(c)
	a.scores[c] += v
}

// Max raises category c to v if v is larger.
func (a *Accumulator) Max(c int, v float64) {
	a.touch(c)
	if v > a.scores[c] {
		a.scores[c] = v
	}
}

// Len returns the number of categories seen.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Top returns the k best candidates, score descending, ties in first-seen
// order.
func (a *Accumulator) Top(k int) []Candidate {
	out := make([]Candidate, len(a.order))
	for i, c := range a.order {
		out[i] = Candidate{Category: c, Score: a.scores[c]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
