package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Storage backends for the wish-list record.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8020"`

	// Remote catalog
	CatalogURL     string        `env:"CATALOG_URL" envDefault:"https://fakestoreapi.com/products"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"0s"`

	// Circuit breaker for the catalog, off unless enabled
	CatalogBreakerEnabled bool    `env:"CATALOG_BREAKER_ENABLED" envDefault:"false"`
	CBMaxRequests         uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval            int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout             int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio        float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests         uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Wish-list storage
	WishListStorage      string        `env:"WISHLIST_STORAGE" envDefault:"file"`
	WishListKey          string        `env:"WISHLIST_KEY" envDefault:"wishList"`
	WishListDataDir      string        `env:"WISHLIST_DATA_DIR" envDefault:"./data"`
	WishListWriteTimeout time.Duration `env:"WISHLIST_WRITE_TIMEOUT" envDefault:"5s"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Slow query logging, 0 disables
	SlowQueryThreshold time.Duration `env:"LOG_SLOW_QUERY" envDefault:"500ms"`

	// Kafka
	KafkaEnabled        bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaPublishTimeout time.Duration `env:"KAFKA_PUBLISH_TIMEOUT" envDefault:"5s"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Listing sessions
	ListingIdleTTL time.Duration `env:"LISTING_IDLE_TTL" envDefault:"30m"`

	// Per-IP rate limiting, 0 disables
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation), empty disables
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if u, err := url.ParseRequestURI(c.CatalogURL); err != nil || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_URL %q", c.CatalogURL)
	}
	if c.CatalogTimeout < 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must not be negative, got %s", c.CatalogTimeout)
	}
	if c.WishListKey == "" {
		return fmt.Errorf("WISHLIST_KEY is required")
	}
	if c.WishListWriteTimeout < 0 {
		return fmt.Errorf("WISHLIST_WRITE_TIMEOUT must not be negative, got %s", c.WishListWriteTimeout)
	}
	if c.KafkaPublishTimeout < 0 {
		return fmt.Errorf("KAFKA_PUBLISH_TIMEOUT must not be negative, got %s", c.KafkaPublishTimeout)
	}

	switch c.WishListStorage {
	case StorageFile:
		if c.WishListDataDir == "" {
			return fmt.Errorf("WISHLIST_DATA_DIR is required for file storage")
		}
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	case StoragePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required for postgres storage")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required for postgres storage")
		}
	default:
		return fmt.Errorf("WISHLIST_STORAGE must be one of file, memory, redis, postgres, got %q", c.WishListStorage)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.ListingIdleTTL <= 0 {
		return fmt.Errorf("LISTING_IDLE_TTL must be positive, got %s", c.ListingIdleTTL)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.CatalogBreakerEnabled && (c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0) {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	return nil
}
