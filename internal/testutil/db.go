// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory SQLite database private to t.
// One connection only: every transaction is serialized, and the in-memory
// database lives exactly as long as that connection.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	cfg.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewTestStore wraps NewTestDB in a Store with a small retry budget
func NewTestStore(t testing.TB) *repository.Store {
	t.Helper()
	return repository.NewStore(NewTestDB(t), 3, time.Millisecond, DiscardLogger())
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
