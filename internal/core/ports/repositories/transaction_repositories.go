package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations over the transaction log.
type TransactionReader interface {
	// ListTransactions returns one page of the user's history, newest first, and the total row count.
	ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) ([]domain.Transaction, int, error)

	// FindTransactionsByReference returns the user's rows sharing reference.
	FindTransactionsByReference(ctx context.Context, userID int64, reference string) ([]domain.Transaction, error)

	// SumByType totals completed amounts per transaction type across the user's accounts since the given time.
	SumByType(ctx context.Context, userID int64, since time.Time) (map[domain.TransactionType]decimal.Decimal, error)

	// SumSignedAmounts returns the signed sum and the number of rows recorded for an account.
	SumSignedAmounts(ctx context.Context, accountID int64) (decimal.Decimal, int, error)
}

// TransactionTxStore defines transaction log writes available inside a unit of work.
type TransactionTxStore interface {
	// AppendTransaction inserts txn and fills in its ID and TransactionDate.
	// A clash on (reference, type) returns apperrors.ErrIdentifierCollision.
	AppendTransaction(ctx context.Context, txn *domain.Transaction) error
}

// TransactionRepositoryFacade combines the transaction log operations used outside a unit of work.
type TransactionRepositoryFacade interface {
	TransactionReader
}
