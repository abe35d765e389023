package database

import (
	"context"
	"fmt"
	"log/slog" // use slog for structured logging
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm opens the Postgres pool (pgx under the hood) and applies migrations
func OpenGorm(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DatabaseURL}), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Verify the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database_connected", "max_open_conns", cfg.DBMaxOpenConns)
	return db, nil
}

// GormConfig is shared by the server, the CLI and the test databases.
// TranslateError turns dialect unique violations into gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// partial indexes cannot be expressed through struct tags portably
var indexStatements = []string{
	// one live review per reviewer and target
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_live_reviewer_target
		ON reviews (reviewer_id, target_type, target_id)
		WHERE deleted_at IS NULL`,
	// one live response per responder and review
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_responses_live_review_responder
		ON review_responses (review_id, responder_id)
		WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_target_status
		ON reviews (target_type, target_id, status)`,
}

// Migrate creates tables, foreign keys and the partial unique indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Review{},
		&models.Vote{},
		&models.Response{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, stmt := range indexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
