package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pktracker/internal/core"
)

// CreateUser inserts a user. A duplicate username yields ErrUsernameTaken.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u := core.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    unixTime(r.now().Unix()),
	}
	var id int64
	err := r.queryRow(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`,
		u.Username, u.PasswordHash, u.CreatedAt.Unix(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = core.UserID(id)

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (r *Repository) GetUser(ctx context.Context, id core.UserID) (core.User, error) {
	return r.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, int64(id))
}

func (r *Repository) getUser(ctx context.Context, q string, arg any) (core.User, error) {
	var (
		u       core.User
		id      int64
		created int64
	)
	err := r.queryRow(ctx, q, arg).Scan(&id, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.ID = core.UserID(id)
	u.CreatedAt = unixTime(created)
	return u, nil
}
