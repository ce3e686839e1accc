// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

import "time"

// Transaction is one purchase event from the transaction table.
type Transaction struct {
	CustomerID string    `csv:"Customer_ID" json:"Customer_ID" validate:"required"`
	Date       time.Time `csv:"Date" json:"Date" validate:"required"`
	Revenue    float64   `csv:"Revenue" json:"Revenue"` // Negative for refunds
	Product    string    `csv:"Product(s)" json:"Product(s)"`
	OrderID    string    `csv:"Order #" json:"Order #" validate:"required"`
}

// Customer is one row of the base customer table.
// Optional columns are nil when the source does not carry them.
type Customer struct {
	CustomerID     string   `csv:"Customer_ID" json:"Customer_ID" validate:"required"`
	Monetary       float64  `csv:"Monetary" json:"Monetary"`
	Frequency      int      `csv:"Frequency" json:"Frequency" validate:"gte=0"`
	CustomerType   string   `csv:"Customer_Type" json:"Customer_Type"`
	AvgOrderValue  *float64 `csv:"Avg_Order_Value" json:"Avg_Order_Value,omitempty"`
	PurchaseRate   *float64 `csv:"Purchase_Rate" json:"Purchase_Rate,omitempty"`
	TotalItemsSold *int     `csv:"Total_Items_Sold" json:"Total_Items_Sold,omitempty" validate:"omitempty,gte=0"`
}

// Snapshot is the pipeline input. Customers may be empty, in which case the
// base table is derived from Transactions.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Customers    []Customer    `json:"customers"`
	Fingerprint  string        `json:"fingerprint"` // SHA-256 over the source files
}

// CustomerTypeUnknown is assigned when the base table is derived from transactions.
const CustomerTypeUnknown = "unknown"
