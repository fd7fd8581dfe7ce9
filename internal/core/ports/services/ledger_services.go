package services

import (
	"context"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/dto"
)

// LedgerWriterSvc moves money. Every method is a single atomic unit of work.
type LedgerWriterSvc interface {
	// Deposit credits an active account owned by userID.
	Deposit(ctx context.Context, userID int64, req dto.DepositRequest) (*domain.LedgerReceipt, error)

	// Withdraw debits an active account owned by userID within balance plus overdraft.
	Withdraw(ctx context.Context, userID int64, req dto.WithdrawalRequest) (*domain.LedgerReceipt, error)

	// Transfer debits the source account and credits the recipient when the IBAN belongs to this bank.
	Transfer(ctx context.Context, userID int64, req dto.TransferRequest) (*domain.LedgerReceipt, error)

	// Pay debits an account in favour of a merchant, tagged with a category.
	Pay(ctx context.Context, userID int64, req dto.PaymentRequest) (*domain.LedgerReceipt, error)
}

// LedgerReaderSvc reads the transaction log.
type LedgerReaderSvc interface {
	// ListTransactions returns a page of the caller's history, optionally for a single account.
	ListTransactions(ctx context.Context, userID int64, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetTransactionsByReference returns the caller-visible rows sharing a reference.
	GetTransactionsByReference(ctx context.Context, userID int64, reference string) ([]domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
