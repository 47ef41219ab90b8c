package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pktracker/internal/core"
)

// Message kinds travel in the AMQP Type property.
const (
	KindExpenseEvent = "expense_event"
	KindBudgetAlert  = "budget_alert"
)

// EventType is the lifecycle change carried by an ExpenseEvent.
type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
)

// ErrMalformedMessage marks deliveries that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// ExpenseEvent describes one change to a user's expense.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent snapshots e for publishing.
func NewExpenseEvent(t EventType, e core.Expense) ExpenseEvent {
	return ExpenseEvent{
		Type:      t,
		ExpenseID: e.ID,
		UserID:    int64(e.UserID),
		Title:     e.Title,
		Category:  string(e.Category),
		Amount:    e.Amount,
		Date:      e.Date.String(),
		Timestamp: time.Now().UTC(),
	}
}

// BudgetAlert is raised when a user's spend for the month passes the limit.
type BudgetAlert struct {
	UserID    int64     `json:"user_id"`
	Month     string    `json:"month"`
	Spent     int64     `json:"spent"`
	Limit     int64     `json:"limit"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetAlert builds the alert for spent against limit in the month of now.
func NewBudgetAlert(user core.UserID, spent, limit int64, now time.Time) BudgetAlert {
	return BudgetAlert{
		UserID:    int64(user),
		Month:     now.Format("2006-01"),
		Spent:     spent,
		Limit:     limit,
		Message:   fmt.Sprintf("Monthly spend ₹%d exceeds budget ₹%d by ₹%d", spent, limit, spent-limit),
		Timestamp: now.UTC(),
	}
}

// Handler receives decoded deliveries.
type Handler interface {
	HandleExpenseEvent(ctx context.Context, ev ExpenseEvent) error
	HandleBudgetAlert(ctx context.Context, alert BudgetAlert) error
}

// dispatch decodes body according to kind and forwards it to h. Decoding
// problems are wrapped in ErrMalformedMessage.
func dispatch(ctx context.Context, kind string, body []byte, h Handler) error {
	switch kind {
	case KindExpenseEvent:
		var ev ExpenseEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if ev.ExpenseID <= 0 || ev.Type == "" {
			return fmt.Errorf("%w: expense event without id or type", ErrMalformedMessage)
		}
		return h.HandleExpenseEvent(ctx, ev)
	case KindBudgetAlert:
		var alert BudgetAlert
		if err := json.Unmarshal(body, &alert); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return h.HandleBudgetAlert(ctx, alert)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedMessage, kind)
	}
}
