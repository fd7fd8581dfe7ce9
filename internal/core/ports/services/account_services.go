package services

import (
	"context"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account owned by userID.
	GetAccountByID(ctx context.Context, accountID, userID int64) (*domain.Account, error)

	// ListAccounts retrieves the user's accounts that are not closed.
	ListAccounts(ctx context.Context, userID int64) ([]domain.Account, error)

	// GetSummary aggregates balances and current-month flows for the user.
	GetSummary(ctx context.Context, userID int64) (*domain.AccountSummary, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CloseAccount soft-deletes an active account whose balance is zero.
	CloseAccount(ctx context.Context, accountID, userID int64) error
}

// AccountAuditSvc defines audit operations over accounts
type AccountAuditSvc interface {
	// ReconcileAccount rebuilds the balance from the transaction log and compares it with the stored one.
	ReconcileAccount(ctx context.Context, accountID, userID int64) (*domain.Reconciliation, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountAuditSvc
}
