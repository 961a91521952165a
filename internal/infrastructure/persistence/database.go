package persistence

import (
	"context"
	"fmt"

	"github.com/workledger/backend/internal/infrastructure/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the store connection and provides the transaction boundary.
// The handle is safe for concurrent use; SQLite's own locking serializes
// writers, bounded by the configured busy timeout.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite store with the given configuration
func NewDatabase(cfg *config.StoreConfig) (*Database, error) {
	return NewDatabaseWithLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger opens the SQLite store with a custom GORM logger
func NewDatabaseWithLogger(cfg *config.StoreConfig, gormLogger logger.Interface) (*Database, error) {
	// TranslateError is left off on purpose: constraint messages are derived
	// by pattern-matching the raw driver error text in translateError.
	db, err := gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite allows one writer at a time; more connections just queue on the
	// file lock and burn the busy timeout.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the store connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the store connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Transaction executes a unit of work inside a single atomic transaction.
// Any error from fn rolls the whole unit back; no partial writes remain
// visible to observers outside the transaction.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// InTransaction executes a unit of work that produces a value. The zero
// value is returned when the unit rolls back.
func InTransaction[T any](ctx context.Context, d *Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var out T
	err := d.Transaction(ctx, func(tx *gorm.DB) error {
		var innerErr error
		out, innerErr = fn(tx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
