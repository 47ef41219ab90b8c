package services

import (
	"context"
	"testing"
	"time"

	"pktracker/internal/cache"
	"pktracker/internal/core"
)

type countingBlogs struct{ calls int }

func (c *countingBlogs) ListBlogsByCategory(ctx context.Context, category string) ([]core.Blog, error) {
	c.calls++
	return []core.Blog{{ID: 1, Category: category, Title: "Start an emergency fund"}}, nil
}

func TestBlogServiceCaches(t *testing.T) {
	store := &countingBlogs{}
	s := NewBlogService(store, cache.NewLRUCache[[]core.Blog](8, time.Minute))

	for _, c := range []string{"Saving", "saving", " SAVING "} {
		posts, err := s.ByCategory(context.Background(), c)
		if err != nil || len(posts) != 1 || posts[0].Category != "saving" {
			t.Fatalf("ByCategory(%q) = %+v, %v", c, posts, err)
		}
	}
	if store.calls != 1 {
		t.Errorf("store called %d times, want 1", store.calls)
	}
	if st := s.CacheStats(); st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("CacheStats() = %+v", st)
	}
}
