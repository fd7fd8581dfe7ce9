package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/banking_backoffice/internal/models"
	"github.com/SscSPs/banking_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.reference_number, t.account_id, t.transaction_type, t.amount, t.balance_after,
	t.description, t.recipient_iban, t.recipient_name, t.category, t.status, t.transaction_date,
	a.account_number, a.account_type`

type PgxTransactionRepository struct {
	db dbtx
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{db: pool}
}

var (
	_ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)
	_ portsrepo.TransactionTxStore          = (*PgxTransactionRepository)(nil)
)

// AppendTransaction inserts one immutable row of the transaction log.
func (r *PgxTransactionRepository) AppendTransaction(ctx context.Context, txn *domain.Transaction) error {
	m := mapping.ToModelTransaction(*txn)
	query := `
		INSERT INTO transactions (reference_number, account_id, transaction_type, amount, balance_after,
			description, recipient_iban, recipient_name, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, transaction_date;
	`
	err := r.db.QueryRow(ctx, query,
		m.ReferenceNumber,
		m.AccountID,
		m.TransactionType,
		m.Amount,
		m.BalanceAfter,
		m.Description,
		m.RecipientIBAN,
		m.RecipientName,
		m.Category,
		m.Status,
	).Scan(&txn.TransactionID, &txn.TransactionDate)
	if err != nil {
		if pgErr, ok := pgError(err); ok {
			switch pgErr.Code {
			case pgUniqueViolation:
				return fmt.Errorf("%w: reference %s", apperrors.ErrIdentifierCollision, m.ReferenceNumber)
			case pgCheckViolation:
				return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.ConstraintName)
			}
		}
		return apperrors.NewStoreError("failed to append transaction", err)
	}
	return nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var out []models.Transaction
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.ReferenceNumber,
			&m.AccountID,
			&m.TransactionType,
			&m.Amount,
			&m.BalanceAfter,
			&m.Description,
			&m.RecipientIBAN,
			&m.RecipientName,
			&m.Category,
			&m.Status,
			&m.TransactionDate,
			&m.AccountNumber,
			&m.AccountType,
		); err != nil {
			return nil, apperrors.NewStoreError("failed to scan transaction row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating transaction rows", err)
	}
	return mapping.ToDomainTransactionSlice(out), nil
}

// ListTransactions returns one page of the user's history and the total number of matching rows.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	where := `FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND ($2::bigint IS NULL OR t.account_id = $2)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+where, userID, filter.AccountID).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStoreError("failed to count transactions", err)
	}

	query := `SELECT ` + transactionColumns + ` ` + where + `
		ORDER BY t.transaction_date DESC, t.id DESC
		LIMIT $3 OFFSET $4;`
	rows, err := r.db.Query(ctx, query, userID, filter.AccountID, filter.Page.PerPage, filter.Page.Offset())
	if err != nil {
		return nil, 0, apperrors.NewStoreError("failed to query transactions", err)
	}
	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// FindTransactionsByReference returns the user's rows carrying reference.
func (r *PgxTransactionRepository) FindTransactionsByReference(ctx context.Context, userID int64, reference string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.reference_number = $2
		ORDER BY t.id;`
	rows, err := r.db.Query(ctx, query, userID, reference)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query transactions by reference", err)
	}
	return scanTransactions(rows)
}

// SumByType totals completed amounts per type for the user's accounts since the given time.
func (r *PgxTransactionRepository) SumByType(ctx context.Context, userID int64, since time.Time) (map[domain.TransactionType]decimal.Decimal, error) {
	query := `
		SELECT t.transaction_type, COALESCE(SUM(t.amount), 0)
		FROM transactions t JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1 AND t.status = 'completed' AND t.transaction_date >= $2
		GROUP BY t.transaction_type;`
	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to sum transactions", err)
	}
	defer rows.Close()

	sums := make(map[domain.TransactionType]decimal.Decimal)
	for rows.Next() {
		var typ string
		var total decimal.Decimal
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, apperrors.NewStoreError("failed to scan transaction sum", err)
		}
		sums[domain.TransactionType(typ)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating transaction sums", err)
	}
	return sums, nil
}

// SumSignedAmounts rebuilds an account balance from its completed rows.
func (r *PgxTransactionRepository) SumSignedAmounts(ctx context.Context, accountID int64) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN transaction_type IN ('deposit', 'transfer_in') THEN amount ELSE -amount END), 0), COUNT(*)
		FROM transactions
		WHERE account_id = $1 AND status = 'completed';`
	var sum decimal.Decimal
	var count int
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, apperrors.NewStoreError("failed to rebuild balance", err)
	}
	return sum, count, nil
}
