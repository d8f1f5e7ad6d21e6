// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing user-entered amounts into exact
// decimals and for reading back whatever a store holds in its amount field.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string into an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding to two decimal places. Signs, zero, and anything
// that is not a plain decimal number are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.50")  -> 12.5, nil
//	ParseAmount("12,345") -> 12.35, nil (rounds up)
//	ParseAmount("-5")     -> ErrInvalidAmount
//	ParseAmount("0")      -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// StoredAmount reads an amount field of unknown shape as held by a store.
// Missing or non-numeric values count as zero; the record is kept.
func StoredAmount(v any) decimal.Decimal {
	switch a := v.(type) {
	case decimal.Decimal:
		return a
	case float64:
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(a)
	case float32:
		return StoredAmount(float64(a))
	case int64:
		return decimal.NewFromInt(a)
	case int:
		return decimal.NewFromInt(int64(a))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AmountFloat converts for JSON and spreadsheet output only.
// Use the decimal for any arithmetic.
func AmountFloat(d decimal.Decimal) float64 {
	f, _ := strconv.ParseFloat(d.StringFixed(2), 64)
	return f
}
