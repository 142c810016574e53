// Package gormstore implements the service-layer storage contracts on top
// of gorm/Postgres. It is the single mutation path for catalog and
// reservation rows; services never touch the database directly.
package gormstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"parkxcel/internal/services"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

type txKey struct{}

// conn returns the transaction bound to ctx when running inside WithTx,
// otherwise a plain context-scoped handle.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// WithTx runs fn inside a database transaction. A serialization failure or
// deadlock is retried once with the whole transaction re-run from scratch;
// anything that still fails for storage-level reasons surfaces as
// ErrServiceUnavailable.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	run := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
	}

	err := run()
	if err != nil && isTransient(err) {
		err = run()
	}
	if err != nil && (isTransient(err) || isConnectionFailure(err)) {
		return fmt.Errorf("%w: %v", services.ErrServiceUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exceptions
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return false
}

// notFound translates gorm's sentinel into the given domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
