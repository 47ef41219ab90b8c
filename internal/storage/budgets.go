package storage

import (
	"context"
	"fmt"

	"pktracker/internal/core"
)

// GetOrCreateBudget returns the user's budget, creating it with a zero
// limit on first access.
func (r *Repository) GetOrCreateBudget(ctx context.Context, userID core.UserID) (core.Budget, error) {
	if _, err := r.exec(ctx,
		`INSERT INTO budgets (user_id, limit_amount) VALUES (?, 0) ON CONFLICT (user_id) DO NOTHING`,
		int64(userID)); err != nil {
		return core.Budget{}, fmt.Errorf("ensure budget: %w", err)
	}

	b := core.Budget{UserID: userID}
	if err := r.queryRow(ctx, `SELECT limit_amount FROM budgets WHERE user_id = ?`, int64(userID)).Scan(&b.Limit); err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// SetBudget upserts the user's budget limit.
func (r *Repository) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.exec(ctx,
		`INSERT INTO budgets (user_id, limit_amount) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET limit_amount = excluded.limit_amount`,
		int64(b.UserID), b.Limit)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}
