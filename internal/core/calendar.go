package core

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	expenseColour = "#f64f59"
	incomeColour  = "#28a745"
	eventText     = "#fff"
)

// CalendarEvent is the JSON shape consumed by the calendar widget.
type CalendarEvent struct {
	ID              int64  `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	TextColor       string `json:"textColor"`
}

// CalendarEvents lists expenses first, then incomes, in the given order.
func CalendarEvents(expenses []Expense, incomes []Income) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		out = append(out, CalendarEvent{
			ID:              e.ID,
			Type:            "expense",
			Title:           fmt.Sprintf("🔻 %s: ₹%d", e.Title, e.Amount),
			Start:           e.Date.String(),
			BackgroundColor: expenseColour,
			BorderColor:     expenseColour,
			TextColor:       eventText,
		})
	}
	for _, i := range incomes {
		out = append(out, CalendarEvent{
			ID:              i.ID,
			Type:            "income",
			Title:           fmt.Sprintf("🔹 %s: ₹%s", i.Source, incomeAmount(i.Amount)),
			Start:           i.Date.String(),
			BackgroundColor: incomeColour,
			BorderColor:     incomeColour,
			TextColor:       eventText,
		})
	}
	return out
}

// incomeAmount prints the shortest decimal form of f, keeping one fractional
// digit on whole values so 500 reads "500.0".
func incomeAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
