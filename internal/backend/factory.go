package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pktracker/internal/amqp"
	"pktracker/internal/auth"
	"pktracker/internal/cache"
	"pktracker/internal/core"
	applog "pktracker/internal/log"
	"pktracker/internal/services"
	"pktracker/internal/storage"
)

const (
	defaultBlogCacheTTL  = 10 * time.Minute
	defaultBlogCacheSize = 32
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentApp),
	}
}

// CreateBackend opens the store, connects the optional event publisher and
// wires the services on top.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}

	repo, err := storage.Open(ctx, config.Dialect, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.Dialect, err)
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
			amqpClient = nil
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	ttl := config.BlogCacheTTL
	if ttl <= 0 {
		ttl = defaultBlogCacheTTL
	}
	size := config.BlogCacheSize
	if size <= 0 {
		size = defaultBlogCacheSize
	}
	blogCache := cache.NewLRUCache[[]core.Blog](size, ttl)
	caches := cache.NewManager(f.logger)
	caches.Register(blogCache)
	interval := config.CacheCleanupInterval
	if interval <= 0 {
		interval = ttl
	}
	caches.StartCleanup(interval)

	b := &Backend{
		Store:    repo,
		Expenses: services.NewExpenseService(repo, publisher, f.logger),
		Groups:   services.NewGroupService(repo, f.logger),
		Blogs:    services.NewBlogService(repo, blogCache),
		Auth:     auth.NewPasswordAuthenticator(repo),
		Sessions: auth.NewSessionManager(config.SessionSecret, config.SessionTTL),
		Caches:   caches,
		Events:   publisher != nil,
	}

	f.logger.Info("Initialized backend",
		"dialect", config.Dialect.String(),
		"amqp_enabled", b.Events,
		"blog_cache_size", size)

	cleanup := func() error {
		caches.Stop()
		var errs []error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close amqp client: %w", err))
			}
		}
		if err := repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close repository: %w", err))
		}
		return errors.Join(errs...)
	}

	return &BackendResult{Backend: b, Cleanup: cleanup}, nil
}
