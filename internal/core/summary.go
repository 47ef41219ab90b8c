package core

import (
	"math"
	"time"
)

// CategoryBreakdown holds parallel label/amount slices for charting.
type CategoryBreakdown struct {
	Categories []Category
	Amounts    []int64
}

// Total returns the sum of all category amounts.
func (b CategoryBreakdown) Total() int64 {
	var t int64
	for _, a := range b.Amounts {
		t += a
	}
	return t
}

// Labels returns the category names as strings.
func (b CategoryBreakdown) Labels() []string {
	out := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		out[i] = string(c)
	}
	return out
}

// AggregateByCategory sums expense amounts per category. Categories appear
// in the order they are first seen in expenses.
func AggregateByCategory(expenses []Expense) CategoryBreakdown {
	var out CategoryBreakdown
	index := make(map[Category]int)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out.Categories)
			index[e.Category] = i
			out.Categories = append(out.Categories, e.Category)
			out.Amounts = append(out.Amounts, 0)
		}
		out.Amounts[i] += e.Amount
	}
	return out
}

// Usage expresses spend as a percentage of a denominator.
type Usage struct {
	// Real is unclamped and drives "over by X%" messaging.
	Real float64
	// Display is capped at 100 for progress bars.
	Display float64
	Over    bool
}

// NewUsage computes spent/denominator*100. A non-positive denominator
// yields a zero usage.
func NewUsage(spent, denominator float64) Usage {
	if denominator <= 0 {
		return Usage{}
	}
	real := spent / denominator * 100
	return Usage{
		Real:    real,
		Display: math.Min(real, 100),
		Over:    real > 100,
	}
}

// OverBy returns how far past 100% the usage is, or 0.
func (u Usage) OverBy() float64 {
	if !u.Over {
		return 0
	}
	return u.Real - 100
}

// SumExpenses totals expense amounts.
func SumExpenses(expenses []Expense) int64 {
	var t int64
	for _, e := range expenses {
		t += e.Amount
	}
	return t
}

// SumIncomes totals income amounts.
func SumIncomes(incomes []Income) float64 {
	var t float64
	for _, i := range incomes {
		t += i.Amount
	}
	return t
}

// MonthSpend totals the expenses dated in the same year and month as now.
func MonthSpend(expenses []Expense, now time.Time) int64 {
	var t int64
	y, m, _ := now.Date()
	for _, e := range expenses {
		if e.Date.Year() == y && e.Date.Month() == m {
			t += e.Amount
		}
	}
	return t
}
