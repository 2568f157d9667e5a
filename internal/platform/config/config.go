// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "LEARN_"

// Catalog sources.
const (
	CatalogSourceYAML     = "yaml"
	CatalogSourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	CORS     CORSConfig     `envPrefix:"CORS_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the database.
type DatabaseConfig struct {
	URL      string `env:"URL"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"25"`
	MinConns int    `env:"MIN_CONNS" envDefault:"5"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables the catalog cache.
type CacheConfig struct {
	URL string        `env:"URL"`
	TTL time.Duration `env:"TTL" envDefault:"10m"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.URL != ""
}

// CatalogConfig selects where modules are read from.
type CatalogConfig struct {
	Source string `env:"SOURCE" envDefault:"yaml"`
	Path   string `env:"PATH"` // empty: built-in catalog
}

// SessionConfig holds learning-session housekeeping settings.
type SessionConfig struct {
	IdleTTL       time.Duration `env:"IDLE_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

// CORSConfig holds the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}

	switch c.Catalog.Source {
	case CatalogSourceYAML:
	case CatalogSourcePostgres:
		if !c.Database.Enabled() {
			return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("LEARN_CATALOG_SOURCE must be 'yaml' or 'postgres', got %q", c.Catalog.Source)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("LEARN_DATABASE_MIN_CONNS (%d) exceeds LEARN_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("LEARN_SESSION_IDLE_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("LEARN_SESSION_SWEEP_INTERVAL must be positive")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}
