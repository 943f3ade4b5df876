// Package session provides the persistence backends for conversation state.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chatpress/internal/config"
	"chatpress/internal/domain/conversation"
	"chatpress/internal/infrastructure/database"
)

// New selects the session backend from configuration. Unknown backends fail
// here, at construction; no store is ever built whose methods fail at call
// time.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (conversation.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		return NewRedisStore(cfg, log)
	case config.SessionBackendPostgres:
		db, err := database.Connect(database.Config{
			DSN:             cfg.PostgresDSN,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnLifetime,
			LogLevel:        gormlogger.Warn,
		})
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			return nil, err
		}
		return NewPostgresStore(db, cfg.SessionTTL, log), nil
	case config.SessionBackendMemory:
		return NewMemoryStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
