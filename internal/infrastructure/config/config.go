package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App   AppConfig
	Store StoreConfig
	Cache CacheConfig
	Log   LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// StoreConfig holds the SQLite store settings. The store is a single local
// file opened read-write, created if missing, with a shared cache.
type StoreConfig struct {
	Path        string        // file path, or ":memory:" for an in-memory store
	BusyTimeout time.Duration // how long a statement waits on a locked database
	ForeignKeys bool          // enforce foreign key constraints
	SharedCache bool          // share the page cache across connections
}

// CacheConfig holds entity cache settings
type CacheConfig struct {
	StalenessWindow time.Duration // full snapshot older than this is refreshed on read
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DSN builds the SQLite connection string for the configured store
func (s StoreConfig) DSN() string {
	if s.Path == ":memory:" {
		return "file::memory:?cache=shared"
	}

	params := url.Values{}
	params.Set("_busy_timeout", fmt.Sprintf("%d", s.BusyTimeout.Milliseconds()))
	if s.ForeignKeys {
		params.Set("_foreign_keys", "on")
	}
	if s.SharedCache {
		params.Set("cache", "shared")
	}
	return fmt.Sprintf("file:%s?%s", s.Path, params.Encode())
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LEDGER_ prefix (e.g., LEDGER_STORE_PATH)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Store: StoreConfig{
			Path:        v.GetString("store.path"),
			BusyTimeout: v.GetDuration("store.busy_timeout"),
			ForeignKeys: v.GetBool("store.foreign_keys"),
			SharedCache: v.GetBool("store.shared_cache"),
		},
		Cache: CacheConfig{
			StalenessWindow: v.GetDuration("cache.staleness_window"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "workledger"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "workledger.db"
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}
	if cfg.Cache.StalenessWindow == 0 {
		cfg.Cache.StalenessWindow = 5 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate checks the configuration for invalid combinations
func (c *Config) validate() error {
	if c.Store.BusyTimeout < 0 {
		return fmt.Errorf("store.busy_timeout cannot be negative")
	}
	if c.Cache.StalenessWindow < 0 {
		return fmt.Errorf("cache.staleness_window cannot be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}
