package storage

import (
	"context"
	"fmt"

	"pktracker/internal/core"
)

// ListBlogsByCategory returns the posts of a category, newest first.
func (r *Repository) ListBlogsByCategory(ctx context.Context, category string) ([]core.Blog, error) {
	rows, err := r.query(ctx,
		`SELECT id, category, title, content, image_url, created_at
		 FROM blogs WHERE LOWER(category) = LOWER(?)
		 ORDER BY created_at DESC, id DESC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var out []core.Blog
	for rows.Next() {
		var (
			b       core.Blog
			created int64
		)
		if err := rows.Scan(&b.ID, &b.Category, &b.Title, &b.Content, &b.ImageURL, &created); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		b.CreatedAt = unixTime(created)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return out, nil
}

// ListBlogCategories returns the distinct blog categories in name order.
func (r *Repository) ListBlogCategories(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, `SELECT DISTINCT category FROM blogs ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list blog categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan blog category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
