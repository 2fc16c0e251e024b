// Package store is the data-access layer: typed operations over users,
// profiles, bookings and reference data, each executed through a retrying
// query executor that normalizes failures into the error taxonomy.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/cache"
)

// Retry counts per operation class. Writes are never blind-retried; reads get
// one retry for transient connection hiccups.
const (
	readRetries  = 2
	writeRetries = 1
	pingRetries  = 3
)

// Store wraps the database handle and the reference-data cache.
type Store struct {
	db     *gorm.DB
	cache  *cache.StaticCache
	logger zerolog.Logger

	// wait blocks between attempts; replaced in tests to observe backoff.
	wait func(ctx context.Context, d time.Duration) error
}

// New creates a Store. The cache may be nil, in which case reference lookups
// go straight to the database.
func New(db *gorm.DB, staticCache *cache.StaticCache, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		cache:  staticCache,
		logger: logger,
		wait:   waitFor,
	}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// execute runs fn with up to retries total attempts, backing off
// 1s * 2^attempt between attempts. Permanent failures stop the loop
// immediately. On exhaustion the error is normalized, tagged with the label
// and logged for operators.
func (s *Store) execute(ctx context.Context, label string, retries int, fn func(tx *gorm.DB) error) error {
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			if waitErr := s.wait(ctx, backoff); waitErr != nil {
				err = waitErr
				break
			}
		}
		if err = fn(s.db.WithContext(ctx)); err == nil {
			return nil
		}
		if !isRetryable(err) {
			break
		}
	}

	appErr := apperrors.From(err)
	if appErr.Metadata["context"] == nil {
		appErr = appErr.WithMeta("context", label)
	}
	apperrors.Log(s.logger, label, appErr)
	return appErr
}

// isRetryable classifies a failure. Deterministic errors (missing rows,
// constraint and data violations, already-tagged errors, cancellation) fail
// fast; anything else is presumed transient.
func isRetryable(err error) bool {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23", "42": // data error, integrity violation, invalid statement
			return false
		}
		return true
	}

	// The sqlite driver used in tests reports constraint failures as plain
	// strings.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "constraint") {
		return false
	}

	return true
}

// isDuplicate reports whether an error is a unique-constraint violation, for
// both the postgres and sqlite drivers.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// Ping verifies database connectivity, retrying transient failures.
func (s *Store) Ping(ctx context.Context) error {
	return s.execute(ctx, "database-connection", pingRetries, func(tx *gorm.DB) error {
		sqlDB, err := tx.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}
