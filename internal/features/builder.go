// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package features

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/cultivar/internal/models"
)

// ErrEmptyTable is returned when the snapshot yields no scorable customers.
var ErrEmptyTable = errors.New("features: empty table")

// Stats counts the data-quality adjustments made while building features.
type Stats struct {
	InputTransactions      int  `json:"input_transactions"`
	DuplicateOrders        int  `json:"duplicate_orders"`
	UnknownProducts        int  `json:"unknown_products"`
	NegativeRevenueRows    int  `json:"negative_revenue_rows"`
	NegativeMonetary       int  `json:"negative_monetary_floored"`
	CustomersNoTransaction int  `json:"customers_without_transactions"`
	OrphanTransactions     int  `json:"orphan_transactions"`
	DuplicateCustomers     int  `json:"duplicate_customers"`
	DerivedBaseTable       bool `json:"derived_base_table"`
}

// Result is the stage 1 output.
type Result struct {
	Table *models.CustomerTable
	Stats Stats
}

// customerAgg accumulates one customer's transactions.
type customerAgg struct {
	first, last time.Time
	revenue     decimal.Decimal
	orders      int
	categories  map[string]int
}

// Build runs feature engineering over a snapshot.
func Build(ctx context.Context, snap *models.Snapshot) (*Result, error) {
	if snap == nil || len(snap.Transactions) == 0 {
		return nil, fmt.Errorf("transactions: %w", ErrEmptyTable)
	}

	var st Stats
	st.InputTransactions = len(snap.Transactions)

	txs := dedupeOrders(snap.Transactions, &st)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysisDate := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(analysisDate) {
			analysisDate = tx.Date
		}
	}

	aggs, order := aggregate(txs, &st)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := snap.Customers
	if len(base) == 0 {
		base = deriveBase(aggs, order)
		st.DerivedBaseTable = true
	}

	rows, inPopulation := joinBase(base, aggs, analysisDate, &st)
	for id, agg := range aggs {
		if !inPopulation[id] {
			st.OrphanTransactions += agg.orders
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("customers with transactions: %w", ErrEmptyTable)
	}

	return &Result{
		Table: &models.CustomerTable{
			Rows:          rows,
			CategoryNames: categoryNames(rows),
			AnalysisDate:  analysisDate,
		},
		Stats: st,
	}, nil
}

// dedupeOrders keeps the first transaction of each order identifier.
func dedupeOrders(in []models.Transaction, st *Stats) []models.Transaction {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Transaction, 0, len(in))
	for _, tx := range in {
		if _, dup := seen[tx.OrderID]; dup {
			st.DuplicateOrders++
			continue
		}
		seen[tx.OrderID] = struct{}{}
		out = append(out, tx)
	}
	return out
}

// aggregate groups transactions by customer. order lists customer IDs by
// first appearance.
func aggregate(txs []models.Transaction, st *Stats) (map[string]*customerAgg, []string) {
	aggs := make(map[string]*customerAgg)
	var order []string

	for _, tx := range txs {
		agg, ok := aggs[tx.CustomerID]
		if !ok {
			agg = &customerAgg{
				first:      tx.Date,
				last:       tx.Date,
				categories: make(map[string]int),
			}
			aggs[tx.CustomerID] = agg
			order = append(order, tx.CustomerID)
		}
		if tx.Date.Before(agg.first) {
			agg.first = tx.Date
		}
		if tx.Date.After(agg.last) {
			agg.last = tx.Date
		}
		if tx.Revenue < 0 {
			st.NegativeRevenueRows++
		}
		agg.revenue = agg.revenue.Add(decimal.NewFromFloat(tx.Revenue))
		agg.orders++

		cat := Classify(tx.Product)
		if cat == CategoryUnknown {
			st.UnknownProducts++
		}
		agg.categories[cat]++
	}
	return aggs, order
}

// deriveBase builds a base table from transaction aggregates, sorted by ID.
func deriveBase(aggs map[string]*customerAgg, order []string) []models.Customer {
	ids := slices.Clone(order)
	slices.Sort(ids)

	base := make([]models.Customer, len(ids))
	for i, id := range ids {
		agg := aggs[id]
		base[i] = models.Customer{
			CustomerID:   id,
			Monetary:     agg.revenue.InexactFloat64(),
			Frequency:    agg.orders,
			CustomerType: models.CustomerTypeUnknown,
		}
	}
	return base
}

// joinBase left-joins the base table onto transaction aggregates, keeping
// base order and dropping base customers without transactions.
func joinBase(base []models.Customer, aggs map[string]*customerAgg, analysisDate time.Time, st *Stats) ([]models.CustomerScore, map[string]bool) {
	rows := make([]models.CustomerScore, 0, len(base))
	inPopulation := make(map[string]bool, len(base))

	for _, c := range base {
		if inPopulation[c.CustomerID] {
			st.DuplicateCustomers++
			continue
		}
		agg, ok := aggs[c.CustomerID]
		if !ok {
			st.CustomersNoTransaction++
			continue
		}
		inPopulation[c.CustomerID] = true
		rows = append(rows, buildRow(c, agg, analysisDate, st))
	}
	return rows, inPopulation
}

func buildRow(c models.Customer, agg *customerAgg, analysisDate time.Time, st *Stats) models.CustomerScore {
	recency := wholeDays(analysisDate.Sub(agg.last))
	age := wholeDays(analysisDate.Sub(agg.first))

	monetary := c.Monetary
	if monetary < 0 {
		st.NegativeMonetary++
		monetary = 0
	}
	freq := c.Frequency

	aov := 0.0
	if c.AvgOrderValue != nil {
		aov = *c.AvgOrderValue
	} else if freq > 0 {
		aov = monetary / float64(freq)
	}

	rate := float64(freq) / float64(max(age, 1))
	if c.PurchaseRate != nil {
		rate = *c.PurchaseRate
	}

	items := 0
	if c.TotalItemsSold != nil {
		items = *c.TotalItemsSold
	}

	custType := c.CustomerType
	if custType == "" {
		custType = models.CustomerTypeUnknown
	}

	return models.CustomerScore{
		CustomerID:           c.CustomerID,
		CustomerType:         custType,
		Monetary:             monetary,
		Frequency:            freq,
		AvgOrderValue:        aov,
		PurchaseRate:         math.Max(rate, 0),
		TotalItemsSold:       items,
		Recency:              recency,
		LastPurchaseDate:     agg.last,
		FirstPurchaseDate:    agg.first,
		CustomerAgeDays:      age,
		FrequencyCategory:    FrequencyCategory(freq),
		MonetaryCategory:     MonetaryCategory(monetary),
		RecencyCategory:      RecencyCategory(recency),
		DaysBetweenPurchases: float64(age) / float64(max(freq, 1)),
		Categories:           maps.Clone(agg.categories),
	}
}

// wholeDays floors a non-negative duration to days.
func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// categoryNames returns the categories bought by at least one customer,
// sorted by name.
func categoryNames(rows []models.CustomerScore) []string {
	set := make(map[string]struct{})
	for i := range rows {
		for name, n := range rows[i].Categories {
			if n > 0 {
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
