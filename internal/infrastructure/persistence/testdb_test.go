package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory store with the full schema applied.
// Each test gets its own database; the single-connection pool keeps the
// in-memory store alive for the test's lifetime.
func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database := &Database{DB: db}
	t.Cleanup(func() {
		_ = database.Close()
	})

	schema := NewSchemaManager(database, zap.NewNop())
	require.NoError(t, schema.Initialize(context.Background()))

	return database
}
