// Package core provides amount parsing and formatting utilities.
//
// Expenses and budgets are whole rupees, incomes are floating amounts and
// group expenses are decimals with two fractional digits.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseWholeAmount parses a positive integer amount such as "250".
//
// A trailing ".0"/".00" is accepted so browser number inputs round-trip,
// any other fractional part is rejected.
//
// Examples:
//
//	ParseWholeAmount("250")    -> 250, nil
//	ParseWholeAmount("250.00") -> 250, nil
//	ParseWholeAmount("2.50")   -> 0, ErrInvalidAmount
func ParseWholeAmount(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) || d.GreaterThan(maxWholeAmount) {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}

// ParseLimit parses a budget limit. Zero is allowed, negatives are not.
func ParseLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v < 0 {
		return 0, ErrNegativeLimit
	}
	return v, nil
}

// ParseFloatAmount parses a positive income amount.
func ParseFloatAmount(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// ParseDecimalAmount parses a positive amount rounded half-up to 2 places.
func ParseDecimalAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

var maxWholeAmount = decimal.NewFromInt(math.MaxInt64)

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatRupees renders an amount with the rupee sign and up to two decimals.
func FormatRupees(v float64) string {
	return "₹" + decimal.NewFromFloat(v).Round(2).String()
}
