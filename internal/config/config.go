package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Session backends known to the factory. Anything else fails at
// construction, never at call time.
const (
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
	SessionBackendMemory   = "memory"
)

// Storage backends for temporary image bytes.
const (
	StorageBackendS3    = "s3"
	StorageBackendLocal = "local"
)

// Config holds the environment driven configuration for the service. It is
// constructed once at startup and passed explicitly into every component; no
// ambient global lookup.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chatpress"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHATPRESS_PORT" envDefault:"8290"`
	LogLevel        string        `env:"CHATPRESS_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Session Store
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"redis"` // Options: "redis", "postgres" or "memory"
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RedisURL       string        `env:"SESSION_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	PostgresDSN    string        `env:"SESSION_POSTGRES_DSN"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Temporary Image Storage
	StorageBackend   string `env:"IMAGE_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"
	LocalStoragePath string `env:"IMAGE_LOCAL_STORAGE_PATH"`
	S3Endpoint       string `env:"IMAGE_S3_ENDPOINT"`
	S3Region         string `env:"IMAGE_S3_REGION" envDefault:"us-west-2"`
	S3Bucket         string `env:"IMAGE_S3_BUCKET"`
	S3AccessKeyID    string `env:"IMAGE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"IMAGE_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"IMAGE_S3_USE_PATH_STYLE" envDefault:"true"`

	// Messaging Platform
	ChannelToken      string        `env:"MESSAGING_CHANNEL_TOKEN"`
	MessagingAPIBase  string        `env:"MESSAGING_API_BASE" envDefault:"https://api.line.me"`
	MessagingDataBase string        `env:"MESSAGING_DATA_BASE" envDefault:"https://api-data.line.me"`
	MessagingTimeout  time.Duration `env:"MESSAGING_TIMEOUT" envDefault:"15s"`

	// Post Building
	TagCatalogue []string `env:"TAG_CATALOGUE" envSeparator:"," envDefault:"diary,tech,travel,food,photo"`

	// Image Pipeline
	ImageMaxBytes     int64  `env:"IMAGE_MAX_BYTES" envDefault:"10485760"` // 10 MiB
	ImageMaxDimension int    `env:"IMAGE_MAX_DIMENSION" envDefault:"2048"`
	ImageJPEGQuality  int    `env:"IMAGE_JPEG_QUALITY" envDefault:"85"`
	ImagePathRoot     string `env:"IMAGE_PATH_ROOT" envDefault:"images"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)

	catalogue := cfg.TagCatalogue[:0]
	for _, tag := range cfg.TagCatalogue {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			catalogue = append(catalogue, trimmed)
		}
	}
	cfg.TagCatalogue = catalogue
	if len(cfg.TagCatalogue) == 0 {
		return nil, fmt.Errorf("TAG_CATALOGUE must list at least one tag")
	}

	if cfg.ImageMaxBytes <= 0 {
		cfg.ImageMaxBytes = 10 * 1024 * 1024
	}
	if cfg.ImageMaxDimension <= 0 {
		cfg.ImageMaxDimension = 2048
	}
	if cfg.ImageJPEGQuality <= 0 || cfg.ImageJPEGQuality > 100 {
		cfg.ImageJPEGQuality = 85
	}
	if cfg.SessionBackend == SessionBackendPostgres && strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, fmt.Errorf("SESSION_POSTGRES_DSN is required when SESSION_BACKEND is postgres")
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage reports whether the local filesystem backend is selected.
func (c *Config) IsLocalStorage() bool {
	return c.StorageBackend == StorageBackendLocal
}
