package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/banking_backoffice/internal/models"
	"github.com/SscSPs/banking_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, account_number, iban, user_id, account_type, balance, currency, overdraft_limit, interest_rate, status, created_at`

type PgxAccountRepository struct {
	db dbtx
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{db: pool}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)
	_ portsrepo.AccountTxStore          = (*PgxAccountRepository)(nil)
)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.AccountNumber,
		&m.IBAN,
		&m.UserID,
		&m.AccountType,
		&m.Balance,
		&m.Currency,
		&m.OverdraftLimit,
		&m.InterestRate,
		&m.Status,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	m, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStoreError("failed to load account", err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// CreateAccount inserts a new account and fills in the generated ID and creation time.
func (r *PgxAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m := mapping.ToModelAccount(*account)
	query := `
		INSERT INTO accounts (account_number, iban, user_id, account_type, balance, currency, overdraft_limit, interest_rate, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		m.AccountNumber,
		m.IBAN,
		m.UserID,
		m.AccountType,
		m.Balance,
		m.Currency,
		m.OverdraftLimit,
		m.InterestRate,
		m.Status,
	).Scan(&account.AccountID, &account.CreatedAt)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: account number or IBAN (%s)", apperrors.ErrIdentifierCollision, pgErr.ConstraintName)
		}
		return apperrors.NewStoreError("failed to save account", err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID, scoped to its owner.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID, userID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2;`
	return r.findOne(ctx, query, accountID, userID)
}

// GetAccountForUpdate retrieves the account and holds its row lock until the transaction ends.
func (r *PgxAccountRepository) GetAccountForUpdate(ctx context.Context, accountID, userID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE;`
	return r.findOne(ctx, query, accountID, userID)
}

// GetActiveAccountByIBANForUpdate locks the active account holding iban.
func (r *PgxAccountRepository) GetActiveAccountByIBANForUpdate(ctx context.Context, iban string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1 AND status = 'active' FOR UPDATE;`
	return r.findOne(ctx, query, iban)
}

// ApplyBalanceDelta adds delta to the stored balance.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance;`,
		accountID, delta,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgCheckViolation {
			return decimal.Zero, fmt.Errorf("%w: balance floor for account %d", apperrors.ErrInsufficientFunds, accountID)
		}
		return decimal.Zero, apperrors.NewStoreError("failed to update balance", err)
	}
	return balance, nil
}

// UpdateAccountStatus changes the account status.
func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountID int64, status domain.AccountStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET status = $2 WHERE id = $1;`, accountID, string(status))
	if err != nil {
		return apperrors.NewStoreError("failed to update account status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListAccountsByUser lists the user's accounts that are not closed.
func (r *PgxAccountRepository) ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND status <> 'closed' ORDER BY created_at, id;`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to query accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("failed to scan account row", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating account rows", err)
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}
