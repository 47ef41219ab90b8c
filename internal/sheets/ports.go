// Package sheets defines the ledger mirror port: an append-only copy of
// expense events and budget alerts kept in a spreadsheet.
package sheets

import (
	"context"
	"time"
)

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		// AppendEvent adds one expense event row and returns its range.
		AppendEvent(ctx context.Context, row EventRow) (rowRef string, err error)
		// AppendAlert adds one budget alert row and returns its range.
		AppendAlert(ctx context.Context, row AlertRow) (rowRef string, err error)
	}
)

// EventRow is one ledger line for an expense change.
type EventRow struct {
	Timestamp time.Time
	Type      string
	ExpenseID int64
	UserID    int64
	Title     string
	Category  string
	Amount    int64
	Date      string
}

// AlertRow is one line in the alerts tab.
type AlertRow struct {
	Timestamp time.Time
	UserID    int64
	Month     string
	Spent     int64
	Limit     int64
	Message   string
}

// EventColumns is the header of the ledger tab, matching EventRow.Values.
var EventColumns = []any{"Timestamp", "Event", "Expense ID", "User ID", "Title", "Category", "Amount", "Date"}

// AlertColumns is the header of the alerts tab, matching AlertRow.Values.
var AlertColumns = []any{"Timestamp", "User ID", "Month", "Spent", "Limit", "Message"}

// Values returns the row cells in column order.
func (r EventRow) Values() []any {
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Type, r.ExpenseID, r.UserID, r.Title, r.Category, r.Amount, r.Date,
	}
}

// Values returns the row cells in column order.
func (r AlertRow) Values() []any {
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.UserID, r.Month, r.Spent, r.Limit, r.Message,
	}
}
