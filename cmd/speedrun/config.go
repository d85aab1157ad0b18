package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/speedrun/internal/config"
)

// configProfile holds the settings one config file profile may set.
// Values are kept as strings and validated by config.LoadFrom.
type configProfile struct {
	Server         string `yaml:"server"`
	DatabaseURL    string `yaml:"database_url"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	QueryTimeout   string `yaml:"query_timeout"`
	StoreRetries   string `yaml:"store_retries"`
	Workers        string `yaml:"workers"`
	BatchSize      string `yaml:"batch_size"`
	MaxHops        string `yaml:"max_hops"`
	MaxVisited     string `yaml:"max_visited"`
	TitleCacheSize string `yaml:"title_cache_size"`
	Port           string `yaml:"port"`
	ListenHost     string `yaml:"listen_host"`
}

// configFile is ~/.speedrun/config.yaml: either flat keys or named profiles.
type configFile struct {
	configProfile `yaml:",inline"`

	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

// values returns the non-empty settings keyed by environment variable name.
func (p configProfile) values() map[string]string {
	all := map[string]string{
		serverKey:            p.Server,
		"DATABASE_URL":       p.DatabaseURL,
		"LOG_LEVEL":          p.LogLevel,
		"LOG_FORMAT":         p.LogFormat,
		"QUERY_TIMEOUT":      p.QueryTimeout,
		"STORE_RETRIES":      p.StoreRetries,
		"SEARCH_WORKERS":     p.Workers,
		"SEARCH_BATCH_SIZE":  p.BatchSize,
		"SEARCH_MAX_HOPS":    p.MaxHops,
		"SEARCH_MAX_VISITED": p.MaxVisited,
		"TITLE_CACHE_SIZE":   p.TitleCacheSize,
		"PORT":               p.Port,
		"LISTEN_HOST":        p.ListenHost,
	}

	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}

	return all
}

// serverKey names the setting that routes searches to a remote speedrun server.
const serverKey = "SPEEDRUN_SERVER"

// flagKeys maps command-line flags to the environment variable they override.
var flagKeys = map[string]string{
	"server":       serverKey,
	"database-url": "DATABASE_URL",
	"log-level":    "LOG_LEVEL",
	"log-format":   "LOG_FORMAT",
	"workers":      "SEARCH_WORKERS",
	"batch-size":   "SEARCH_BATCH_SIZE",
	"max-hops":     "SEARCH_MAX_HOPS",
	"max-visited":  "SEARCH_MAX_VISITED",
	"port":         "PORT",
	"host":         "LISTEN_HOST",
}

// configPath returns the location of the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".speedrun", "config.yaml"), nil
}

// loadConfigFile reads the config file's settings for the active profile.
// A missing file yields no settings.
func loadConfigFile() (map[string]string, error) {
	path, err := configPath()
	if err != nil {
		return nil, nil //nolint:nilerr // no home directory means no config file.
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Profile values override flat keys.
	values := cfg.values()

	if cfg.Profiles != nil {
		name := cfg.ActiveProfile
		if name == "" {
			name = "default"
		}

		p, ok := cfg.Profiles[name]
		if !ok && cfg.ActiveProfile != "" {
			return nil, fmt.Errorf("%s: active profile %q is not defined", path, name)
		}

		for k, v := range p.values() {
			values[k] = v
		}
	}

	return values, nil
}

// settings returns a lookup applying precedence flag > environment > config file.
func settings(cmd *cobra.Command) (func(string) string, error) {
	file, err := loadConfigFile()
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]string)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	return func(key string) string {
		if v, ok := overrides[key]; ok {
			return v
		}

		if v := os.Getenv(key); v != "" {
			return v
		}

		return file[key]
	}, nil
}

// resolveConfig loads the database-backed configuration through settings.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	lookup, err := settings(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFrom(lookup)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

// newLogger builds the process logger. Logs go to w so stdout carries only results.
func newLogger(cfg *config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	// Level and format were validated by config.LoadFrom.
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
