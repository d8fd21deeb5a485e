// Package config holds the storefront's runtime configuration, loaded from
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/openshelf/storefront/pkg/config"
)

// Config holds all configuration for the storefront engine.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Backend the storefront shops against
	BackendOrigin  string        `env:"BACKEND_ORIGIN" envDefault:"http://localhost:4000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	BreakerEnabled bool          `env:"BACKEND_BREAKER_ENABLED" envDefault:"true"`

	// Persisted shopper credential
	CredentialFile string `env:"CREDENTIAL_FILE" envDefault:".storefront/credential.json"`

	// Catalog cache (disabled when REDIS_ADDR is empty)
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CatalogTTL    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	// Activity event stream (disabled when no brokers are set)
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	ActivityTopic string   `env:"ACTIVITY_TOPIC" envDefault:"storefront.activity"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
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
	u, err := url.Parse(c.BackendOrigin)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("BACKEND_ORIGIN must be an absolute URL, got %q", c.BackendOrigin)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.BackendTimeout)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("STOREFRONT_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	return nil
}

// CacheEnabled reports whether a Redis catalog cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// EventsEnabled reports whether the activity event stream is configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
