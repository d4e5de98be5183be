// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol is prepended to every displayed price.
const CurrencySymbol = "$"

// Product image limits.
const (
	ProductImageMaxBytes = 2 * 1024 * 1024
	ProductImageMaxKB    = ProductImageMaxBytes / 1024
)

// ProductImageNamespace is the storage namespace holding product images.
const ProductImageNamespace = "products"

// Availability labels.
const (
	LabelInStock    = "In Stock"
	LabelAvailable  = "Available"
	LabelOutOfStock = "Out of Stock"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a price with the currency symbol, thousands separators
// and exactly two decimal places: 79.99 becomes "$79.99", 1299.5 becomes "$1,299.50".
func FormatPrice(price decimal.Decimal) string {
	rounded := price.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()

	return sign + CurrencySymbol + pricePrinter.Sprintf("%d.%02d", whole.IntPart(), cents)
}

// AvailabilityLabel returns the storefront label for a product's availability.
func AvailabilityLabel(available bool) string {
	if available {
		return LabelInStock
	}
	return LabelOutOfStock
}

// AdminAvailabilityLabel returns the status badge text used in the admin list.
func AdminAvailabilityLabel(available bool) string {
	if available {
		return LabelAvailable
	}
	return LabelOutOfStock
}
