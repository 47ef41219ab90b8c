package services

import (
	"context"
	"strings"

	"pktracker/internal/cache"
	"pktracker/internal/core"
)

// BlogStore is the storage subset used by BlogService.
type BlogStore interface {
	ListBlogsByCategory(ctx context.Context, category string) ([]core.Blog, error)
}

// BlogService serves seeded blog posts through an LRU cache.
type BlogService struct {
	store BlogStore
	cache *cache.LRUCache[[]core.Blog]
}

// NewBlogService wraps store with c; a nil cache disables caching.
func NewBlogService(store BlogStore, c *cache.LRUCache[[]core.Blog]) *BlogService {
	return &BlogService{store: store, cache: c}
}

// ByCategory returns the posts for category, matched case-insensitively.
func (s *BlogService) ByCategory(ctx context.Context, category string) ([]core.Blog, error) {
	key := strings.ToLower(strings.TrimSpace(category))
	load := func() ([]core.Blog, error) { return s.store.ListBlogsByCategory(ctx, key) }
	if s.cache == nil {
		return load()
	}
	return s.cache.GetOrLoad(key, load)
}

// CacheStats reports the blog cache counters; zero when caching is off.
func (s *BlogService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}
