package core

import "time"

// ForecastWindowDays is the trailing window the forecast extrapolates from.
const ForecastWindowDays = 30

type ForecastResult struct {
	WindowStart      Date
	WindowEnd        Date
	TotalSpent       int64
	DailyAverage     float64
	PredictedMonthly float64
	Income           float64
	PotentialSavings float64
	Breakdown        CategoryBreakdown
}

// InWindow reports whether d falls within the trailing window ending on now.
func InWindow(d Date, now time.Time, days int) bool {
	end := DateOf(now)
	start := end.AddDate(0, 0, -(days - 1))
	return !d.Before(start) && !d.After(end.Time)
}

// Forecast extrapolates the next month's spend linearly from the last 30
// days of expenses, ignoring Investment. income is the trailing 30-day
// income and only feeds PotentialSavings.
func Forecast(expenses []Expense, income float64, now time.Time) ForecastResult {
	end := DateOf(now)
	r := ForecastResult{
		WindowStart: Date{Time: end.AddDate(0, 0, -(ForecastWindowDays - 1))},
		WindowEnd:   end,
		Income:      income,
	}

	window := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Category == Investment || !InWindow(e.Date, now, ForecastWindowDays) {
			continue
		}
		window = append(window, e)
		r.TotalSpent += e.Amount
	}

	r.DailyAverage = float64(r.TotalSpent) / ForecastWindowDays
	r.PredictedMonthly = r.DailyAverage * ForecastWindowDays
	r.PotentialSavings = income - r.PredictedMonthly
	r.Breakdown = AggregateByCategory(window)
	return r
}
