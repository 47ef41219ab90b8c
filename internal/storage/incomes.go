package storage

import (
	"context"
	"fmt"

	"pktracker/internal/core"
)

func (r *Repository) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	err := r.queryRow(ctx,
		`INSERT INTO incomes (user_id, source, amount, date) VALUES (?, ?, ?, ?) RETURNING id`,
		int64(i.UserID), i.Source, i.Amount, dateValue(i.Date),
	).Scan(&i.ID)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return i, nil
}

// ListIncomes returns the user's incomes, newest first.
func (r *Repository) ListIncomes(ctx context.Context, userID core.UserID) ([]core.Income, error) {
	rows, err := r.query(ctx,
		`SELECT id, user_id, source, amount, date FROM incomes WHERE user_id = ? ORDER BY date DESC, id DESC`,
		int64(userID))
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			i   core.Income
			uid int64
			d   dateColumn
		)
		if err := rows.Scan(&i.ID, &uid, &i.Source, &i.Amount, &d); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		i.UserID = core.UserID(uid)
		i.Date = d.Date
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteIncome(ctx context.Context, userID core.UserID, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, int64(userID))
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return affectedOne(res)
}
