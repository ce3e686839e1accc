// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package features

import "strings"

// Category names produced by Classify.
const (
	CategoryUnknown = "Unknown"
	CategoryOther   = "Other"

	// UnknownProduct replaces missing product text before classification.
	UnknownProduct = "Unknown Product"
)

// categoryRule maps a category to the keywords that select it.
type categoryRule struct {
	Name     string
	Keywords []string
}

// taxonomy is evaluated in order; the first rule with a matching keyword wins.
var taxonomy = []categoryRule{
	{Name: "Poultry", Keywords: []string{"chick", "pullet", "broiler", "poultry", "bird"}},
	{Name: "Seeds", Keywords: []string{"seed", "maize", "corn", "soybean", "rice"}},
	{Name: "Feed", Keywords: []string{"feed", "concentrate", "premix"}},
	{Name: "Fertilizer", Keywords: []string{"fertilizer", "npk", "urea"}},
	{Name: "Agrochemicals", Keywords: []string{"pesticide", "herbicide", "insecticide", "fungicide"}},
	{Name: "Equipment", Keywords: []string{"tractor", "machine", "equipment", "processing", "pump"}},
	{Name: "Vegetables", Keywords: []string{"vegetable", "tomato", "pepper", "cucumber", "carrot"}},
	{Name: "Fruits", Keywords: []string{"fruit", "papaya", "mango", "watermelon"}},
}

// NormalizeProduct substitutes UnknownProduct for blank product text.
func NormalizeProduct(product string) string {
	if strings.TrimSpace(product) == "" {
		return UnknownProduct
	}
	return product
}

// Classify returns the category for product text using case-insensitive
// substring matching.
func Classify(product string) string {
	product = NormalizeProduct(product)
	if product == UnknownProduct {
		return CategoryUnknown
	}

	lower := strings.ToLower(product)
	for _, rule := range taxonomy {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return CategoryOther
}

// Categories lists every category Classify can return, in taxonomy order.
func Categories() []string {
	names := make([]string, 0, len(taxonomy)+2)
	for _, rule := range taxonomy {
		names = append(names, rule.Name)
	}
	return append(names, CategoryOther, CategoryUnknown)
}
