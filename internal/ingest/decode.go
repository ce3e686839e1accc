// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/validation"
)

// Input column names.
const (
	ColCustomerID     = "Customer_ID"
	ColDate           = "Date"
	ColRevenue        = "Revenue"
	ColProduct        = "Product(s)"
	ColOrderID        = "Order #"
	ColMonetary       = "Monetary"
	ColFrequency      = "Frequency"
	ColCustomerType   = "Customer_Type"
	ColAvgOrderValue  = "Avg_Order_Value"
	ColPurchaseRate   = "Purchase_Rate"
	ColTotalItemsSold = "Total_Items_Sold"
)

// TransactionColumns are required in a transaction table.
var TransactionColumns = []string{ColCustomerID, ColDate, ColRevenue, ColProduct, ColOrderID}

// CustomerColumns are required in a base customer table.
var CustomerColumns = []string{ColCustomerID, ColMonetary, ColFrequency}

var errBlank = errors.New("required value is blank")

// DecodeTransactions maps a raw table to transactions. Customer_ID, Date and
// Revenue must be present; a blank product is kept blank and normalised
// downstream.
func DecodeTransactions(t *Table) ([]models.Transaction, error) {
	if err := t.Require(TransactionColumns...); err != nil {
		return nil, err
	}

	out := make([]models.Transaction, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowErr := func(col string, err error) error {
			return &RowError{File: t.Source, Row: t.Line(i), Column: col, Value: t.Cell(row, col), Err: err}
		}

		raw := t.Cell(row, ColDate)
		if raw == "" {
			return nil, rowErr(ColDate, errBlank)
		}
		date, err := ParseDate(raw, t.serialDates)
		if err != nil {
			return nil, rowErr(ColDate, err)
		}

		revenue, err := parseMoney(t.Cell(row, ColRevenue))
		if err != nil {
			return nil, rowErr(ColRevenue, err)
		}

		tx := models.Transaction{
			CustomerID: t.Cell(row, ColCustomerID),
			Date:       date,
			Revenue:    revenue,
			Product:    t.Cell(row, ColProduct),
			OrderID:    t.Cell(row, ColOrderID),
		}
		if err := validateRow(t, i, row, tx); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// DecodeCustomers maps a raw table to base customer rows. Customer_Type,
// Avg_Order_Value, Purchase_Rate and Total_Items_Sold are optional.
func DecodeCustomers(t *Table) ([]models.Customer, error) {
	if err := t.Require(CustomerColumns...); err != nil {
		return nil, err
	}

	out := make([]models.Customer, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowErr := func(col string, err error) error {
			return &RowError{File: t.Source, Row: t.Line(i), Column: col, Value: t.Cell(row, col), Err: err}
		}

		monetary, err := parseMoney(t.Cell(row, ColMonetary))
		if err != nil {
			return nil, rowErr(ColMonetary, err)
		}
		frequency, err := parseCount(t.Cell(row, ColFrequency))
		if err != nil {
			return nil, rowErr(ColFrequency, err)
		}

		c := models.Customer{
			CustomerID:   t.Cell(row, ColCustomerID),
			Monetary:     monetary,
			Frequency:    frequency,
			CustomerType: t.Cell(row, ColCustomerType),
		}
		if c.AvgOrderValue, err = optionalMoney(t.Cell(row, ColAvgOrderValue)); err != nil {
			return nil, rowErr(ColAvgOrderValue, err)
		}
		if c.PurchaseRate, err = optionalMoney(t.Cell(row, ColPurchaseRate)); err != nil {
			return nil, rowErr(ColPurchaseRate, err)
		}
		if v := t.Cell(row, ColTotalItemsSold); v != "" {
			n, err := parseCount(v)
			if err != nil {
				return nil, rowErr(ColTotalItemsSold, err)
			}
			c.TotalItemsSold = &n
		}

		if err := validateRow(t, i, row, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// validateRow runs the struct tags and reports the first failing field.
func validateRow(t *Table, i int, row []string, v any) error {
	err := validation.ValidateStruct(v)
	if err == nil {
		return nil
	}
	col := ""
	var sve *validation.StructValidationError
	if errors.As(err, &sve) && len(sve.Errors()) > 0 {
		col = sve.Errors()[0].Field()
	}
	return &RowError{File: t.Source, Row: t.Line(i), Column: col, Value: t.Cell(row, col), Err: err}
}

// parseMoney parses an amount such as "1,250.50" or "$300". A blank amount
// is an error.
func parseMoney(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.TrimSpace(s) == "" {
		return 0, errBlank
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	f, _ := d.Float64()
	return f, nil
}

func optionalMoney(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f, err := parseMoney(s)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// parseCount parses a non-fractional count; "3.0" is accepted because
// spreadsheet exports often render integers as floats.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errBlank
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}
