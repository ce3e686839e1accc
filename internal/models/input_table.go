// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

// Input table names used by database sources and the generate command.
const (
	TableTransactions = "transactions"
	TableCustomers    = "customers"
)

// TransactionsTable renders transactions in the input column layout.
func TransactionsTable(name string, txs []Transaction) *Table {
	t := &Table{
		Name: name,
		Columns: []Column{
			{"Customer_ID", TypeString},
			{"Date", TypeTime},
			{"Revenue", TypeFloat},
			{"Product(s)", TypeString},
			{"Order #", TypeString},
		},
		Rows: make([][]any, len(txs)),
	}
	for i, tx := range txs {
		t.Rows[i] = []any{tx.CustomerID, tx.Date, tx.Revenue, optString(tx.Product), tx.OrderID}
	}
	return t
}

// CustomersTable renders base customer rows in the input column layout.
func CustomersTable(name string, cs []Customer) *Table {
	t := &Table{
		Name: name,
		Columns: []Column{
			{"Customer_ID", TypeString},
			{"Monetary", TypeFloat},
			{"Frequency", TypeInt},
			{"Customer_Type", TypeString},
			{"Avg_Order_Value", TypeFloat},
			{"Purchase_Rate", TypeFloat},
			{"Total_Items_Sold", TypeInt},
		},
		Rows: make([][]any, len(cs)),
	}
	for i := range cs {
		c := &cs[i]
		var items any
		if c.TotalItemsSold != nil {
			items = int64(*c.TotalItemsSold)
		}
		t.Rows[i] = []any{
			c.CustomerID, c.Monetary, int64(c.Frequency), optString(c.CustomerType),
			floatPtr(c.AvgOrderValue), floatPtr(c.PurchaseRate), items,
		}
	}
	return t
}
