package backend

import (
	"context"
	"time"

	"pktracker/internal/auth"
	"pktracker/internal/cache"
	"pktracker/internal/services"
	"pktracker/internal/storage"
)

// Backend groups the wired services the HTTP layer depends on.
type Backend struct {
	Store    *storage.Repository
	Expenses *services.ExpenseService
	Groups   *services.GroupService
	Blogs    *services.BlogService
	Auth     *auth.PasswordAuthenticator
	Sessions *auth.SessionManager
	Caches   *cache.Manager

	// Events reports whether expense events are published.
	Events bool
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Dialect storage.Dialect
	// DSN is the SQLite file path or the PostgreSQL URL.
	DSN string

	// Optional event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	SessionSecret string
	SessionTTL    time.Duration

	BlogCacheTTL  time.Duration
	BlogCacheSize int
	// CacheCleanupInterval defaults to BlogCacheTTL.
	CacheCleanupInterval time.Duration
}
