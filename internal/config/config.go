// Package config provides environment-driven configuration for speedrun.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	LogLevel       string
	LogFormat      string
	DBMaxConns     int
	QueryTimeout   time.Duration
	StoreRetries   int
	MaxHops        int
	MaxVisited     int
	Workers        int
	BatchSize      int
	TitleCacheSize int
	Port           string
	ListenHost     string
	CORSOrigins    []string
	RateLimit      int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through lookup, which returns "" for unset keys.
func LoadFrom(lookup func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}

		return fallback
	}

	cfg := &Config{
		DatabaseURL: Secret(get("DATABASE_URL", "")),
		LogLevel:    get("LOG_LEVEL", "info"),
		LogFormat:   get("LOG_FORMAT", "text"),
		Port:        get("PORT", "3040"),
		ListenHost:  get("LISTEN_HOST", "127.0.0.1"),
	}

	timeout, err := time.ParseDuration(get("QUERY_TIMEOUT", "30s"))
	if err != nil || timeout < time.Second || timeout > 10*time.Minute {
		return nil, fmt.Errorf("QUERY_TIMEOUT must be a duration between 1s and 10m")
	}
	cfg.QueryTimeout = timeout

	ints := []struct {
		dst      *int
		key      string
		fallback int
		lo, hi   int
	}{
		{&cfg.DBMaxConns, "DB_MAX_CONNS", 8, 2, 200},
		{&cfg.StoreRetries, "STORE_RETRIES", 3, 0, 10},
		{&cfg.MaxHops, "SEARCH_MAX_HOPS", 0, 0, 64},
		{&cfg.MaxVisited, "SEARCH_MAX_VISITED", 0, 0, 1_000_000_000},
		{&cfg.Workers, "SEARCH_WORKERS", 4, 1, 64},
		{&cfg.BatchSize, "SEARCH_BATCH_SIZE", 1000, 1, 100_000},
		{&cfg.TitleCacheSize, "TITLE_CACHE_SIZE", 10_000, 0, 10_000_000},
		{&cfg.RateLimit, "RATE_LIMIT", 20, 1, 10_000},
	}

	for _, f := range ints {
		v, err := strconv.Atoi(get(f.key, strconv.Itoa(f.fallback)))
		if err != nil || v < f.lo || v > f.hi {
			return nil, fmt.Errorf("%s must be an integer between %d and %d", f.key, f.lo, f.hi)
		}

		*f.dst = v
	}

	origins := get("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}
