// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package datagen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/tomtom215/cultivar/internal/models"
)

// ErrInvalidConfig is returned by Generate for unusable settings.
var ErrInvalidConfig = errors.New("datagen: invalid config")

// Config controls the synthetic snapshot.
type Config struct {
	Customers int
	// End is the last possible purchase date; Start the first.
	Start time.Time
	End   time.Time
	Seed  uint64
	// RefundRate is the probability that an order carries a refund line.
	RefundRate float64
}

// DefaultConfig returns a two-year snapshot of 500 customers ending on
// 2024-12-31.
func DefaultConfig() Config {
	return Config{
		Customers:  500,
		Start:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Seed:       42,
		RefundRate: 0.02,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Customers <= 0:
		return fmt.Errorf("%w: customers must be positive", ErrInvalidConfig)
	case !c.End.After(c.Start):
		return fmt.Errorf("%w: end must be after start", ErrInvalidConfig)
	case c.RefundRate < 0 || c.RefundRate > 1:
		return fmt.Errorf("%w: refund rate must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Progress receives the number of customers generated so far.
type Progress func(done, total int)

// product is one catalogue entry. Names carry the keywords the category
// classifier looks for.
type product struct {
	Name  string
	Price float64
}

var catalogue = [][]product{
	{{"Day-old Broiler Chicks (100)", 180}, {"Point of Lay Pullets", 240}, {"Kienyeji Chicks (50)", 95}},
	{{"Hybrid Maize Seed 10kg", 65}, {"Soybean Seed 5kg", 40}, {"Upland Rice Seed 25kg", 55}},
	{{"Broiler Starter Feed 50kg", 38}, {"Layer Concentrate 50kg", 42}, {"Dairy Premix 5kg", 22}},
	{{"NPK 17-17-17 Fertilizer 50kg", 48}, {"Urea 46% 50kg", 44}, {"CAN Top Dressing Fertilizer", 36}},
	{{"Glyphosate Herbicide 1L", 14}, {"Lambda Insecticide 500ml", 11}, {"Copper Fungicide 1kg", 16}},
	{{"Knapsack Water Pump", 120}, {"Maize Shelling Machine", 650}, {"Feed Processing Equipment", 900}},
	{{"Tomato Seedlings Tray", 18}, {"Sweet Pepper Seedlings", 15}, {"Carrot Vegetable Pack", 9}},
	{{"Grafted Mango Seedling", 6}, {"Papaya Fruit Seedlings", 5}, {"Watermelon Fruit Starter", 7}},
	{{"Farm Consultation Visit", 30}, {"Soil Testing Service", 25}},
}

var customerTypes = []string{"Farmer", "Agro-dealer", "Cooperative", "Processor"}

// persona shapes a customer's purchasing behaviour.
type persona struct {
	minOrders, maxOrders int
	// activeFrom is the fraction of the window after which the customer is
	// active; activeTo the fraction at which they stop buying.
	activeFrom, activeTo float64
	categories           int
	spend                float64
}

var personas = []persona{
	{minOrders: 8, maxOrders: 20, activeFrom: 0.0, activeTo: 1.0, categories: 4, spend: 1.6}, // loyal
	{minOrders: 3, maxOrders: 7, activeFrom: 0.2, activeTo: 1.0, categories: 3, spend: 1.0},  // regular
	{minOrders: 2, maxOrders: 6, activeFrom: 0.0, activeTo: 0.5, categories: 2, spend: 0.9},  // lapsed
	{minOrders: 1, maxOrders: 1, activeFrom: 0.0, activeTo: 1.0, categories: 1, spend: 0.7},  // one-time
}

// Generate builds a reproducible snapshot: equal configs give equal
// snapshots. Customers are derived from the generated transactions, so the
// base table always agrees with the transaction table.
func Generate(ctx context.Context, cfg Config, progress Progress) (*models.Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	faker := gofakeit.New(cfg.Seed)
	window := cfg.End.Sub(cfg.Start)
	snap := &models.Snapshot{}
	order := 0

	for i := 0; i < cfg.Customers; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		id := fmt.Sprintf("CUST-%05d", i+1)
		p := personas[faker.IntRange(0, len(personas)-1)]
		favourites := pickCategories(faker, p.categories)

		from := cfg.Start.Add(time.Duration(p.activeFrom * float64(window)))
		to := cfg.Start.Add(time.Duration(p.activeTo * float64(window)))

		var txs []models.Transaction
		orders := faker.IntRange(p.minOrders, p.maxOrders)
		for o := 0; o < orders; o++ {
			order++
			orderID := fmt.Sprintf("ORD-%07d", order)
			date := faker.DateRange(from, to).UTC().Truncate(24 * time.Hour)

			lines := faker.IntRange(1, 3)
			for l := 0; l < lines; l++ {
				cat := catalogue[favourites[faker.IntRange(0, len(favourites)-1)]]
				item := cat[faker.IntRange(0, len(cat)-1)]
				qty := float64(faker.IntRange(1, 4))
				revenue := round2(item.Price * qty * p.spend * faker.Float64Range(0.85, 1.15))
				txs = append(txs, models.Transaction{
					CustomerID: id,
					Date:       date,
					Revenue:    revenue,
					Product:    item.Name,
					OrderID:    orderID,
				})
			}
			if faker.Float64Range(0, 1) < cfg.RefundRate {
				last := txs[len(txs)-1]
				last.Revenue = -round2(last.Revenue / 2)
				txs = append(txs, last)
			}
		}

		sort.SliceStable(txs, func(a, b int) bool { return txs[a].Date.Before(txs[b].Date) })
		snap.Transactions = append(snap.Transactions, txs...)
		snap.Customers = append(snap.Customers, summarize(id, faker.RandomString(customerTypes), txs))

		if progress != nil {
			progress(i+1, cfg.Customers)
		}
	}

	return snap, nil
}

// pickCategories returns n distinct catalogue indexes.
func pickCategories(faker *gofakeit.Faker, n int) []int {
	idx := make([]int, len(catalogue))
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := faker.IntRange(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n]
}

// summarize derives the base customer row from the customer's transactions.
func summarize(id, customerType string, txs []models.Transaction) models.Customer {
	orders := make(map[string]struct{}, len(txs))
	var monetary float64
	for _, tx := range txs {
		orders[tx.OrderID] = struct{}{}
		monetary += tx.Revenue
	}
	monetary = round2(monetary)
	frequency := len(orders)
	aov := round2(monetary / float64(frequency))
	items := len(txs)

	first, last := txs[0].Date, txs[len(txs)-1].Date
	months := math.Max(1, last.Sub(first).Hours()/(24*30))
	rate := round2(float64(frequency) / months)

	return models.Customer{
		CustomerID:     id,
		Monetary:       monetary,
		Frequency:      frequency,
		CustomerType:   customerType,
		AvgOrderValue:  &aov,
		PurchaseRate:   &rate,
		TotalItemsSold: &items,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
