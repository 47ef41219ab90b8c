// Package services orchestrates storage writes with their side effects:
// expense events, budget alerts and group settlement views.
package services

import (
	"context"
	"fmt"
	"time"

	"pktracker/internal/amqp"
	"pktracker/internal/core"
	applog "pktracker/internal/log"
	"pktracker/internal/storage"
)

// ExpenseStore is the storage subset used by ExpenseService.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID core.UserID, id int64) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, userID core.UserID, id int64) error
	ListExpenses(ctx context.Context, userID core.UserID, f storage.ExpenseFilter) ([]core.Expense, error)
	GetOrCreateBudget(ctx context.Context, userID core.UserID) (core.Budget, error)
}

// Publisher sends ledger messages to the broker.
type Publisher interface {
	PublishExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error
	PublishBudgetAlert(ctx context.Context, alert amqp.BudgetAlert) error
}

// ExpenseService persists expenses and publishes their lifecycle events.
// Publishing is best effort: a broker failure never fails the write.
type ExpenseService struct {
	store     ExpenseStore
	publisher Publisher
	logger    *applog.Logger
	now       func() time.Time
}

// NewExpenseService creates the service. publisher may be nil, in which
// case no events are sent.
func NewExpenseService(store ExpenseStore, publisher Publisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentExpense),
		now:       time.Now,
	}
}

// Create validates and stores e, then publishes expense.created.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	before, track := s.spendBefore(ctx, e)
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.publishEvent(ctx, amqp.ExpenseCreated, created)
	if track {
		s.checkBudget(ctx, created.UserID, before)
	}
	return created, nil
}

// Update rewrites an owned expense. storage.ErrNotFound is returned when
// the expense does not exist or belongs to someone else.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	before, track := s.spendBefore(ctx, e)
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return err
	}
	s.publishEvent(ctx, amqp.ExpenseUpdated, e)
	if track {
		s.checkBudget(ctx, e.UserID, before)
	}
	return nil
}

// Delete removes an owned expense and publishes expense.deleted with its
// last known values.
func (s *ExpenseService) Delete(ctx context.Context, userID core.UserID, id int64) error {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(ctx, amqp.ExpenseDeleted, e)
	return nil
}

func (s *ExpenseService) publishEvent(ctx context.Context, t amqp.EventType, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(t, e)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.NewFields().
				WithOperation(applog.OpPublish).
				WithExpense(e.ID, e.Title, e.Amount, string(e.Category)).
				WithError(err).
				ToSlice()...)
	}
}

// spendBefore snapshots this month's spend ahead of a write of e. track is
// false when the write cannot raise a budget alert: events are disabled or
// e is dated outside the current month.
func (s *ExpenseService) spendBefore(ctx context.Context, e core.Expense) (spent int64, track bool) {
	if s.publisher == nil {
		return 0, false
	}
	y, m, _ := s.now().Date()
	if e.Date.Year() != y || e.Date.Month() != m {
		return 0, false
	}
	spent, err := s.monthSpend(ctx, e.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "Budget check skipped", applog.FieldUserID, e.UserID, applog.FieldError, err)
		return 0, false
	}
	return spent, true
}

func (s *ExpenseService) monthSpend(ctx context.Context, userID core.UserID) (int64, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, storage.ExpenseFilter{})
	if err != nil {
		return 0, err
	}
	return core.MonthSpend(expenses, s.now()), nil
}

// checkBudget publishes a BudgetAlert when a write moved this month's
// spend from at or under a positive limit to over it.
func (s *ExpenseService) checkBudget(ctx context.Context, userID core.UserID, before int64) {
	budget, err := s.store.GetOrCreateBudget(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Budget check skipped", applog.FieldUserID, userID, applog.FieldError, err)
		return
	}
	if budget.Limit <= 0 || before > budget.Limit {
		return
	}
	spent, err := s.monthSpend(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Budget check skipped", applog.FieldUserID, userID, applog.FieldError, err)
		return
	}
	if spent <= budget.Limit {
		return
	}
	if err := s.publisher.PublishBudgetAlert(ctx, amqp.NewBudgetAlert(userID, spent, budget.Limit, s.now())); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish budget alert",
			applog.FieldUserID, userID, applog.FieldError, err)
	}
}
