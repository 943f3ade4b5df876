package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatpress/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "chatpress", cfg.ServiceName)
	assert.Equal(t, ":8290", cfg.Addr())
	assert.Equal(t, config.SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, config.StorageBackendS3, cfg.StorageBackend)
	assert.False(t, cfg.IsLocalStorage())
	assert.Equal(t, int64(10*1024*1024), cfg.ImageMaxBytes)
	assert.Equal(t, 2048, cfg.ImageMaxDimension)
	assert.Equal(t, 85, cfg.ImageJPEGQuality)
	assert.Equal(t, []string{"diary", "tech", "travel", "food", "photo"}, cfg.TagCatalogue)
}

func TestLoad_NormalizesBackendNames(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "  Memory ")
	t.Setenv("IMAGE_STORAGE_BACKEND", "LOCAL")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.SessionBackendMemory, cfg.SessionBackend)
	assert.Equal(t, config.StorageBackendLocal, cfg.StorageBackend)
	assert.True(t, cfg.IsLocalStorage())
}

func TestLoad_TagCatalogue(t *testing.T) {
	t.Setenv("TAG_CATALOGUE", " go , tooling ,, infra ")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "tooling", "infra"}, cfg.TagCatalogue)
}

func TestLoad_EmptyTagCatalogueRejected(t *testing.T) {
	t.Setenv("TAG_CATALOGUE", " , ,")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "postgres")
	t.Setenv("SESSION_POSTGRES_DSN", "")

	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("SESSION_POSTGRES_DSN", "host=localhost user=chatpress dbname=chatpress")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.SessionBackendPostgres, cfg.SessionBackend)
}

func TestLoad_ClampsImagePolicy(t *testing.T) {
	t.Setenv("IMAGE_MAX_BYTES", "-1")
	t.Setenv("IMAGE_MAX_DIMENSION", "0")
	t.Setenv("IMAGE_JPEG_QUALITY", "250")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), cfg.ImageMaxBytes)
	assert.Equal(t, 2048, cfg.ImageMaxDimension)
	assert.Equal(t, 85, cfg.ImageJPEGQuality)
}
