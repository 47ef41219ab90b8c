package backend

import (
	"fmt"

	"pktracker/internal/config"
	"pktracker/internal/storage"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	dialect, err := storage.ParseDialect(appConfig.DataBackend)
	if err != nil {
		return Config{}, fmt.Errorf("invalid backend type in config: %w", err)
	}

	dsn := appConfig.SQLiteDBPath
	if dialect == storage.Postgres {
		dsn = appConfig.DatabaseURL
	}

	return Config{
		Dialect: dialect,
		DSN:     dsn,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		SessionSecret: appConfig.SessionSecret,
		SessionTTL:    appConfig.SessionTTL,

		BlogCacheTTL:  appConfig.BlogCacheTTL,
		BlogCacheSize: appConfig.BlogCacheSize,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if _, err := storage.ParseDialect(string(c.Dialect)); err != nil {
		return err
	}
	if c.DSN == "" {
		switch c.Dialect {
		case storage.SQLite:
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		case storage.Postgres:
			return fmt.Errorf("database URL is required for postgres backend")
		}
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("session secret is required")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}
