package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"pktracker/internal/core"
)

// CreateGroup inserts the group and adds its creator as the first member.
func (r *Repository) CreateGroup(ctx context.Context, g core.ExpenseGroup) (core.ExpenseGroup, error) {
	now := r.now().Unix()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.ExpenseGroup{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		r.dialect.rebind(`INSERT INTO expense_groups (name, group_type, creator_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		g.Name, string(g.Type), int64(g.CreatorID), now,
	).Scan(&g.ID)
	if err != nil {
		return core.ExpenseGroup{}, fmt.Errorf("create group: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		r.dialect.rebind(`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`),
		g.ID, int64(g.CreatorID), now); err != nil {
		return core.ExpenseGroup{}, fmt.Errorf("add creator to group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.ExpenseGroup{}, fmt.Errorf("commit transaction: %w", err)
	}
	g.CreatedAt = unixTime(now)

	slog.InfoContext(ctx, "Group created", "group_id", g.ID, "creator_id", g.CreatorID, "type", g.Type)
	return g, nil
}

// GetGroupForMember loads a group with its members. It returns ErrNotFound
// when the group does not exist or userID is not a member.
func (r *Repository) GetGroupForMember(ctx context.Context, groupID int64, userID core.UserID) (core.ExpenseGroup, error) {
	var (
		g       core.ExpenseGroup
		gtype   string
		creator int64
		created int64
	)
	err := r.queryRow(ctx,
		`SELECT g.id, g.name, g.group_type, g.creator_id, g.created_at
		 FROM expense_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE g.id = ? AND m.user_id = ?`,
		groupID, int64(userID),
	).Scan(&g.ID, &g.Name, &gtype, &creator, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseGroup{}, ErrNotFound
	}
	if err != nil {
		return core.ExpenseGroup{}, fmt.Errorf("get group: %w", err)
	}
	g.Type = core.GroupType(gtype)
	g.CreatorID = core.UserID(creator)
	g.CreatedAt = unixTime(created)

	members, err := r.listMembers(ctx, g.ID)
	if err != nil {
		return core.ExpenseGroup{}, err
	}
	g.Members = members
	return g, nil
}

// ListGroupsForUser returns the groups userID belongs to, newest first.
// Members are not loaded.
func (r *Repository) ListGroupsForUser(ctx context.Context, userID core.UserID) ([]core.ExpenseGroup, error) {
	rows, err := r.query(ctx,
		`SELECT g.id, g.name, g.group_type, g.creator_id, g.created_at
		 FROM expense_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id DESC`,
		int64(userID))
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseGroup
	for rows.Next() {
		var (
			g       core.ExpenseGroup
			gtype   string
			creator int64
			created int64
		)
		if err := rows.Scan(&g.ID, &g.Name, &gtype, &creator, &created); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Type = core.GroupType(gtype)
		g.CreatorID = core.UserID(creator)
		g.CreatedAt = unixTime(created)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return out, nil
}

// AddMember adds userID to the group. Adding an existing member is a no-op.
func (r *Repository) AddMember(ctx context.Context, groupID int64, userID core.UserID) error {
	_, err := r.exec(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, int64(userID), r.now().Unix())
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// listMembers returns members in join order.
func (r *Repository) listMembers(ctx context.Context, groupID int64) ([]core.User, error) {
	rows, err := r.query(ctx,
		`SELECT u.id, u.username, u.created_at
		 FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at ASC, u.id ASC`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var (
			u       core.User
			id      int64
			created int64
		)
		if err := rows.Scan(&id, &u.Username, &created); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		u.ID = core.UserID(id)
		u.CreatedAt = unixTime(created)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

// CreateGroupExpense stores a shared expense. Its date is assigned here.
// The caller is expected to have validated payer membership.
func (r *Repository) CreateGroupExpense(ctx context.Context, e core.GroupExpense) (core.GroupExpense, error) {
	e.Date = core.DateOf(r.now())
	e.Amount = e.Amount.Round(2)
	err := r.queryRow(ctx,
		`INSERT INTO group_expenses (group_id, title, amount, paid_by, date) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		e.GroupID, e.Title, e.Amount.StringFixed(2), int64(e.PaidBy), dateValue(e.Date),
	).Scan(&e.ID)
	if err != nil {
		return core.GroupExpense{}, fmt.Errorf("create group expense: %w", err)
	}
	return e, nil
}

// ListGroupExpenses returns a group's expenses, newest first.
func (r *Repository) ListGroupExpenses(ctx context.Context, groupID int64) ([]core.GroupExpense, error) {
	rows, err := r.query(ctx,
		`SELECT id, group_id, title, amount, paid_by, date
		 FROM group_expenses WHERE group_id = ?
		 ORDER BY date DESC, id DESC`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("list group expenses: %w", err)
	}
	defer rows.Close()

	var out []core.GroupExpense
	for rows.Next() {
		var (
			e      core.GroupExpense
			amount decimal.Decimal
			paidBy int64
			d      dateColumn
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Title, &amount, &paidBy, &d); err != nil {
			return nil, fmt.Errorf("scan group expense: %w", err)
		}
		e.Amount = amount
		e.PaidBy = core.UserID(paidBy)
		e.Date = d.Date
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list group expenses: %w", err)
	}
	return out, nil
}
