package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes inspected by the repositories.
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction. Acquiring the connection is bounded by
// acquireTimeout; the transaction itself is not tied to ctx cancellation.
func (r *BaseRepository) Begin(ctx context.Context, acquireTimeout time.Duration) (pgx.Tx, error) {
	acquireCtx := ctx
	if acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, acquireTimeout)
		defer cancel()
	}
	tx, err := r.Pool.BeginTx(acquireCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.NewStoreError("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStoreError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewStoreError("failed to rollback transaction", err)
	}
	return nil
}

// TxOptions configures the unit of work runner.
type TxOptions struct {
	AcquireTimeout time.Duration
	// MaxRetries is the number of extra attempts after a deadlock or serialization abort.
	MaxRetries int
}

type pgxTxManager struct {
	BaseRepository
	opts TxOptions
}

func newPgxTxManager(pool *pgxpool.Pool, opts TxOptions) *pgxTxManager {
	return &pgxTxManager{BaseRepository: BaseRepository{Pool: pool}, opts: opts}
}

var _ portsrepo.TransactionManager = (*pgxTxManager)(nil)

// WithinTx runs fn in one database transaction, retrying the whole unit when
// PostgreSQL aborts it with a deadlock or serialization failure.
func (m *pgxTxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !isRetryableTxError(err) || attempt >= m.opts.MaxRetries {
			return err
		}
		slog.Default().Warn("Retrying aborted transaction",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
}

func (m *pgxTxManager) runOnce(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx, err := m.Begin(ctx, m.opts.AcquireTimeout)
	if err != nil {
		return err
	}

	// Once begun, the unit runs to commit or rollback regardless of the caller going away.
	txCtx := context.WithoutCancel(ctx)
	defer func() {
		if err != nil {
			if rbErr := m.Rollback(txCtx, tx); rbErr != nil {
				slog.Default().Error("Rollback failed", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = fn(txCtx, newPgxUnitOfWork(tx)); err != nil {
		return err
	}
	return m.Commit(txCtx, tx)
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// pgxUnitOfWork binds the repositories to one open transaction.
type pgxUnitOfWork struct {
	accounts     *PgxAccountRepository
	transactions *PgxTransactionRepository
	users        *PgxUserRepository
}

func newPgxUnitOfWork(tx pgx.Tx) *pgxUnitOfWork {
	return &pgxUnitOfWork{
		accounts:     &PgxAccountRepository{db: tx},
		transactions: &PgxTransactionRepository{db: tx},
		users:        &PgxUserRepository{db: tx},
	}
}

func (u *pgxUnitOfWork) Accounts() portsrepo.AccountTxStore         { return u.accounts }
func (u *pgxUnitOfWork) Transactions() portsrepo.TransactionTxStore { return u.transactions }
func (u *pgxUnitOfWork) Users() portsrepo.UserTxStore               { return u.users }

// pgError extracts the PostgreSQL error from err, if any.
func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
