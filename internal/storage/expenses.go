package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pktracker/internal/core"
)

// ExpenseOrder selects the ordering of ListExpenses.
type ExpenseOrder int

const (
	// NewestFirst orders by date descending, then id descending.
	NewestFirst ExpenseOrder = iota
	// InsertionOrder orders by id ascending.
	InsertionOrder
)

// ExpenseFilter narrows ListExpenses. A blank Search matches everything.
type ExpenseFilter struct {
	Search string
	Order  ExpenseOrder
}

const expenseColumns = `id, user_id, title, amount, category, date`

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO expenses (user_id, title, amount, category, date) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		int64(e.UserID), e.Title, e.Amount, string(e.Category), dateValue(e.Date),
	).Scan(&id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"title", e.Title,
		"amount", e.Amount,
		"category", e.Category,
		"date", e.Date.String())

	return e, nil
}

// GetExpense returns the expense only when userID owns it.
func (r *Repository) GetExpense(ctx context.Context, userID core.UserID, id int64) (core.Expense, error) {
	row := r.queryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`,
		id, int64(userID))
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpense rewrites an owned expense. Returns ErrNotFound when the row
// does not exist or belongs to another user.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.exec(ctx,
		`UPDATE expenses SET title = ?, amount = ?, category = ?, date = ? WHERE id = ? AND user_id = ?`,
		e.Title, e.Amount, string(e.Category), dateValue(e.Date), e.ID, int64(e.UserID))
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return affectedOne(res)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID core.UserID, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, int64(userID))
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affectedOne(res)
}

// ListExpenses returns the user's expenses, optionally filtered by a
// case-insensitive title search.
func (r *Repository) ListExpenses(ctx context.Context, userID core.UserID, f ExpenseFilter) ([]core.Expense, error) {
	q := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`
	args := []any{int64(userID)}
	if f.Search != "" {
		q += ` AND LOWER(title) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(f.Search))
	}
	switch f.Order {
	case InsertionOrder:
		q += ` ORDER BY id ASC`
	default:
		q += ` ORDER BY date DESC, id DESC`
	}

	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		userID   int64
		category string
		date     dateColumn
	)
	if err := s.Scan(&e.ID, &userID, &e.Title, &e.Amount, &category, &date); err != nil {
		return core.Expense{}, err
	}
	e.UserID = core.UserID(userID)
	e.Category = core.Category(category)
	e.Date = date.Date
	return e, nil
}
