package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/image"
)

// New selects the temp-storage backend from configuration.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (image.TempStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendLocal:
		return NewLocalStorage(cfg, log)
	case config.StorageBackendS3:
		return NewS3Storage(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown image storage backend %q", cfg.StorageBackend)
	}
}
