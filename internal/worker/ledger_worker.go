// Package worker mirrors ledger events consumed from the broker into the
// spreadsheet ledger.
package worker

import (
	"context"
	"fmt"

	"pktracker/internal/amqp"
	applog "pktracker/internal/log"
	"pktracker/internal/sheets"
)

// LedgerWorker appends every consumed event to a LedgerWriter.
type LedgerWorker struct {
	ledger sheets.LedgerWriter
	logger *applog.Logger
}

var _ amqp.Handler = (*LedgerWorker)(nil)

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerWorker{ledger: ledger, logger: logger.WithComponent(applog.ComponentWorker)}
}

// HandleExpenseEvent appends ev to the ledger tab. An error requeues the
// message.
func (w *LedgerWorker) HandleExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error {
	ref, err := w.ledger.AppendEvent(ctx, sheets.EventRow{
		Timestamp: ev.Timestamp,
		Type:      string(ev.Type),
		ExpenseID: ev.ExpenseID,
		UserID:    ev.UserID,
		Title:     ev.Title,
		Category:  ev.Category,
		Amount:    ev.Amount,
		Date:      ev.Date,
	})
	if err != nil {
		return fmt.Errorf("append expense event %d: %w", ev.ExpenseID, err)
	}
	w.logger.InfoContext(ctx, "Mirrored expense event",
		applog.FieldEventType, string(ev.Type),
		applog.FieldExpenseID, ev.ExpenseID,
		applog.FieldSheetRange, ref)
	return nil
}

// HandleBudgetAlert appends alert to the alerts tab.
func (w *LedgerWorker) HandleBudgetAlert(ctx context.Context, alert amqp.BudgetAlert) error {
	ref, err := w.ledger.AppendAlert(ctx, sheets.AlertRow{
		Timestamp: alert.Timestamp,
		UserID:    alert.UserID,
		Month:     alert.Month,
		Spent:     alert.Spent,
		Limit:     alert.Limit,
		Message:   alert.Message,
	})
	if err != nil {
		return fmt.Errorf("append budget alert for user %d: %w", alert.UserID, err)
	}
	w.logger.InfoContext(ctx, "Mirrored budget alert",
		applog.FieldUserID, alert.UserID,
		applog.FieldSheetRange, ref)
	return nil
}
