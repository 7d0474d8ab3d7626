package postgres

import (
	"context"
	"fmt"
	"time"

	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Pool interface {
	DBTX
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Store struct {
	pool       Pool
	maxRetries int
	backoff    time.Duration
}

func NewStore(pool Pool, maxRetries int) *Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Store{pool: pool, maxRetries: maxRetries, backoff: 20 * time.Millisecond}
}

func bind(q DBTX, inTx bool) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{q},
		Customers:    &customersRepo{q},
		Accounts:     &accountsRepo{q: q, lock: inTx},
		Transactions: &transactionsRepo{q},
		Lookups:      &lookupsRepo{q},
		AuditLogs:    &auditLogsRepo{q},
	}
}

func (s *Store) Repos() repo.Repositories { return bind(s.pool, false) }

// WithTx runs fn in a SERIALIZABLE transaction, retrying serialization
// failures and deadlocks up to maxRetries times.
func (s *Store) WithTx(ctx context.Context, fn func(repo.Repositories) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}
		err = s.runTx(ctx, fn)
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", repo.ErrConflict, err)
}

func (s *Store) runTx(ctx context.Context, fn func(repo.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(bind(tx, true)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
