package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "workledger", cfg.App.Name)
	assert.Equal(t, "workledger.db", cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Store.BusyTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.StalenessWindow)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_STORE_PATH", "/tmp/ledger-test.db")
	t.Setenv("LEDGER_LOG_LEVEL", "debug")
	t.Setenv("LEDGER_CACHE_STALENESS_WINDOW", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger-test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 90*time.Second, cfg.Cache.StalenessWindow)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LEDGER_LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestStoreDSN(t *testing.T) {
	t.Run("in-memory store", func(t *testing.T) {
		cfg := StoreConfig{Path: ":memory:"}
		assert.Equal(t, "file::memory:?cache=shared", cfg.DSN())
	})

	t.Run("file store carries busy timeout and pragmas", func(t *testing.T) {
		cfg := StoreConfig{
			Path:        "ledger.db",
			BusyTimeout: 5 * time.Second,
			ForeignKeys: true,
			SharedCache: true,
		}
		dsn := cfg.DSN()
		assert.Contains(t, dsn, "file:ledger.db?")
		assert.Contains(t, dsn, "_busy_timeout=5000")
		assert.Contains(t, dsn, "_foreign_keys=on")
		assert.Contains(t, dsn, "cache=shared")
	})

	t.Run("pragmas are opt-in", func(t *testing.T) {
		cfg := StoreConfig{Path: "ledger.db", BusyTimeout: time.Second}
		dsn := cfg.DSN()
		assert.NotContains(t, dsn, "_foreign_keys")
		assert.NotContains(t, dsn, "cache=shared")
	})
}
