package testutil

import (
	"os"
	"strings"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresURLEnv names the DSN of a disposable Postgres for lock-sensitive tests
const PostgresURLEnv = "TEST_DATABASE_URL"

// NewPostgresDB migrates a fresh schema in the database named by
// TEST_DATABASE_URL and drops it when t ends. The test is skipped when the
// variable is unset. Unlike NewTestDB the pool has several connections, so
// row locks are really contended.
func NewPostgresDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(PostgresURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}

	connCfg, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	schema := "reviewhub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin := stdlib.OpenDB(*connCfg)
	t.Cleanup(func() { _ = admin.Close() })
	_, err = admin.Exec("CREATE SCHEMA " + schema)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = admin.Exec("DROP SCHEMA " + schema + " CASCADE") })

	scoped := connCfg.Copy()
	scoped.RuntimeParams["search_path"] = schema
	sqlDB := stdlib.OpenDB(*scoped)
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := database.GormConfig()
	cfg.Logger = logger.Discard
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// NewPostgresStore wraps NewPostgresDB with a retry budget sized for contention
func NewPostgresStore(t testing.TB) *repository.Store {
	t.Helper()
	return repository.NewStore(NewPostgresDB(t), 5, 5*time.Millisecond, DiscardLogger())
}
