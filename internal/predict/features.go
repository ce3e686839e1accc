// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
)

// FeatureSet describes how a customer row becomes a model input vector. It
// is stored with the trained model so scoring reproduces training exactly.
type FeatureSet struct {
	Names        []string
	Categories   []string
	CustomerType []string // sorted distinct types; the index is the encoding
	WithMonetary bool
}

// NewFeatureSet builds the churn feature layout for table. The CLV model
// uses the same layout without Monetary.
func NewFeatureSet(table *models.CustomerTable, withMonetary bool) FeatureSet {
	seen := make(map[string]struct{})
	for i := range table.Rows {
		seen[table.Rows[i].CustomerType] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	names := []string{"Frequency"}
	if withMonetary {
		names = append(names, "Monetary")
	}
	names = append(names, "Avg_Order_Value", "Customer_Age_Days", "Purchase_Rate", "Recency", "Total_Items_Sold")
	for _, c := range table.CategoryNames {
		names = append(names, models.CategoryColumn(c))
	}
	names = append(names, "R_Score", "F_Score", "M_Score", "Customer_Type_Encoded")

	return FeatureSet{
		Names:        names,
		Categories:   append([]string(nil), table.CategoryNames...),
		CustomerType: types,
		WithMonetary: withMonetary,
	}
}

// encodeType returns the label encoding of t, or -1 for a type unseen at
// training time.
func (fs *FeatureSet) encodeType(t string) float64 {
	i := sort.SearchStrings(fs.CustomerType, t)
	if i < len(fs.CustomerType) && fs.CustomerType[i] == t {
		return float64(i)
	}
	return -1
}

// Vector returns the model input for r, in Names order.
func (fs *FeatureSet) Vector(r *models.CustomerScore) []float64 {
	v := make([]float64, 0, len(fs.Names))
	v = append(v, float64(r.Frequency))
	if fs.WithMonetary {
		v = append(v, r.Monetary)
	}
	v = append(v,
		r.AvgOrderValue,
		float64(r.CustomerAgeDays),
		r.PurchaseRate,
		float64(r.Recency),
		float64(r.TotalItemsSold),
	)
	for _, c := range fs.Categories {
		v = append(v, float64(r.CategoryCount(c)))
	}
	v = append(v,
		float64(r.RScore),
		float64(r.FScore),
		float64(r.MScore),
		fs.encodeType(r.CustomerType),
	)
	return v
}

// Matrix returns the input vectors for every row.
func (fs *FeatureSet) Matrix(rows []models.CustomerScore) [][]float64 {
	x := make([][]float64, len(rows))
	for i := range rows {
		x[i] = fs.Vector(&rows[i])
	}
	return x
}
