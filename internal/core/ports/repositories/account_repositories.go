package repositories

import (
	"context"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID returns the account if it exists and belongs to userID.
	FindAccountByID(ctx context.Context, accountID, userID int64) (*domain.Account, error)

	// ListAccountsByUser returns the user's accounts that are not closed, oldest first.
	ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error)
}

// AccountTxStore defines account operations available inside a unit of work.
type AccountTxStore interface {
	// CreateAccount inserts account and fills in its generated ID and CreatedAt.
	// A clash on account number or IBAN returns apperrors.ErrIdentifierCollision.
	CreateAccount(ctx context.Context, account *domain.Account) error

	// GetAccountForUpdate locks and returns the account owned by userID.
	GetAccountForUpdate(ctx context.Context, accountID, userID int64) (*domain.Account, error)

	// GetActiveAccountByIBANForUpdate locks and returns the active account with iban.
	GetActiveAccountByIBANForUpdate(ctx context.Context, iban string) (*domain.Account, error)

	// ApplyBalanceDelta adds delta to the balance and returns the resulting balance.
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error)

	// UpdateAccountStatus changes the lifecycle status of the account.
	UpdateAccountStatus(ctx context.Context, accountID int64, status domain.AccountStatus) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// available outside a unit of work.
type AccountRepositoryFacade interface {
	AccountReader
}
