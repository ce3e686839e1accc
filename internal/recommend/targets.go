// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
)

// TargetCustomers returns the row indices of the n highest-Monetary
// customers, highest first, ties in table order. n <= 0 targets everyone.
func TargetCustomers(table *models.CustomerTable, n int) []int {
	rows := make([]int, len(table.Rows))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return table.Rows[rows[a]].Monetary > table.Rows[rows[b]].Monetary
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
