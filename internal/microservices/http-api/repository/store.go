package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrConflict is returned once a transaction kept failing on
	// serialization or deadlock errors for the whole retry budget.
	ErrConflict = errors.New("transaction conflict")
	// ErrDuplicate is returned when an insert hits a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// Postgres SQLSTATE codes worth retrying
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateUniqueViolation      = "23505"
)

// Store hands out repositories bound to one *gorm.DB, which is either the
// pool or an open transaction.
type Store struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewStore creates a store; maxAttempts < 1 is treated as 1
func NewStore(db *gorm.DB, maxAttempts int, backoff time.Duration, logger *slog.Logger) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:          db,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Reviews() ReviewRepository { return NewReviewRepository(s.db) }

func (s *Store) Votes() VoteRepository { return NewVoteRepository(s.db) }

func (s *Store) Responses() ResponseRepository { return NewResponseRepository(s.db) }

// Transaction runs fn atomically. Serialization failures and deadlocks roll
// back and re-run fn from scratch, so fn must not have side effects outside
// the transaction. Any other error is returned as is.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			return fn(&Store{db: gtx, maxAttempts: 1, backoff: s.backoff, logger: s.logger})
		})
		if err == nil || !IsRetryable(err) {
			return err
		}
		lastErr = err

		s.logger.Warn("tx_retry",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"error", err,
		)
		if attempt == s.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}

	s.logger.Error("tx_retry_budget_exhausted", "attempts", s.maxAttempts, "error", lastErr)
	return fmt.Errorf("%w after %d attempts: %v", ErrConflict, s.maxAttempts, lastErr)
}

// IsRetryable reports whether err is a transient concurrency failure
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return true
		}
	}
	return false
}

// IsUniqueViolation covers the translated gorm error, raw pgx errors and
// the SQLite message used by the test database.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// paginate normalizes page/limit the same way every list endpoint does
func paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
