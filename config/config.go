// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VIDLISTS_"

// Config holds all application configuration.
type Config struct {
	// CatalogURL is the upstream video list endpoint; the page number is added as ?page=N
	CatalogURL string `json:"catalog_url"`
	// HTTPTimeout bounds each upstream request
	HTTPTimeout time.Duration `json:"http_timeout"`
	// RequestsPerSecond limits upstream requests per host (0 = unlimited)
	RequestsPerSecond float64 `json:"requests_per_second"`
	// UserAgent is sent with every upstream request
	UserAgent string `json:"user_agent"`

	// StoreDriver selects the playlist store: json, sqlite, redis or postgres
	StoreDriver string `json:"store_driver"`
	// StorePath is the data file for the json and sqlite drivers
	StorePath string `json:"store_path"`
	// SQLitePoolSize is the number of pooled sqlite connections
	SQLitePoolSize int `json:"sqlite_pool_size"`
	// RedisURL is used by the redis driver
	RedisURL string `json:"redis_url"`
	// RedisKeyPrefix namespaces keys in a shared Redis
	RedisKeyPrefix string `json:"redis_key_prefix"`
	// PostgresDSN is used by the postgres driver
	PostgresDSN string `json:"postgres_dsn"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
	// LogFormat is text or json
	LogFormat string `json:"log_format"`

	// MetricsFile, when set, receives a Prometheus text dump after each CLI command
	MetricsFile string `json:"metrics_file"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		CatalogURL:        "https://mock-youtube-api.herokuapp.com/api/videos",
		HTTPTimeout:       30 * time.Second,
		RequestsPerSecond: 5,
		UserAgent:         "vidlists/1.0",
		StoreDriver:       "json",
		SQLitePoolSize:    4,
		RedisKeyPrefix:    "vidlists:user:",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load loads configuration from the default config file locations, a .env
// file and environment variables.
// Priority: env vars > .env > config file > defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches
// vidlists.json in the current directory, then ~/.config/vidlists/vidlists.json.
// An explicit path must exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		// The default config file is optional
		if path != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Variables already set in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	paths := []string{path}
	if path == "" {
		paths = []string{"vidlists.json"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, ".config", "vidlists", "vidlists.json"))
		}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == "" {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}

	return fs.ErrNotExist
}

// loadFromEnv overrides config with environment variables. Unparseable
// numbers and durations are errors rather than silently ignored.
func (c *Config) loadFromEnv() error {
	if v := env("CATALOG_URL"); v != "" {
		c.CatalogURL = v
	}
	if v := env("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTPTimeout = d
	}
	if v := env("REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", EnvPrefix, err)
		}
		c.RequestsPerSecond = f
	}
	if v := env("USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := env("STORE_DRIVER"); v != "" {
		c.StoreDriver = strings.ToLower(v)
	}
	if v := env("STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := env("SQLITE_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSQLITE_POOL_SIZE: %w", EnvPrefix, err)
		}
		c.SQLitePoolSize = n
	}
	if v := env("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := env("REDIS_KEY_PREFIX"); v != "" {
		c.RedisKeyPrefix = v
	}
	if v := env("POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := env("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := env("METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

// applyDerivedDefaults fills the store path for file-backed drivers.
func (c *Config) applyDerivedDefaults() {
	if c.StorePath != "" {
		return
	}
	switch c.StoreDriver {
	case "json":
		c.StorePath = "vidlists-data.json"
	case "sqlite":
		c.StorePath = "vidlists.db"
	}
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.CatalogURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("catalog_url must be an absolute http(s) URL, got %q", c.CatalogURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative")
	}

	switch c.StoreDriver {
	case "json", "sqlite":
		if c.StorePath == "" {
			return fmt.Errorf("store_path is required for the %s driver", c.StoreDriver)
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store_driver must be one of json, sqlite, redis, postgres, got %q", c.StoreDriver)
	}
	if c.SQLitePoolSize < 1 {
		return fmt.Errorf("sqlite_pool_size must be at least 1")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return level, nil
}
