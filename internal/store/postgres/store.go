// Package postgres implements domain.Store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// writerLockKey is the advisory lock held by every top-level unit of work.
const writerLockKey int64 = 0x66697431

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs repository calls on the pool, or on the transaction of the unit of work
// it was handed to.
type Store struct {
	pool *pgxpool.Pool
	db   querier
	tx   pgx.Tx
	now  func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the clock used to fill missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore constructs a Store backed by pool.
func NewStore(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool: pool,
		db:   pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Atomic implements domain.Store. The outermost call opens a transaction and takes the
// writer lock; nested calls run inside a savepoint.
func (s *Store) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if s.tx != nil {
		tx, err = s.tx.Begin(ctx)
	} else {
		tx, err = s.pool.BeginTx(ctx, pgx.TxOptions{})
		if err == nil {
			if _, lockErr := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, writerLockKey); lockErr != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("acquire writer lock: %w", lockErr)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(&Store{pool: s.pool, db: tx, tx: tx, now: s.now}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// mapError converts constraint violations into domain errors.
func mapError(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.Conflictf("%s already exists", what)
		case "23503", "23514":
			return domain.InvalidArgumentf("%s: %s", what, pgErr.Message)
		}
	}
	return err
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ domain.Store = (*Store)(nil)
