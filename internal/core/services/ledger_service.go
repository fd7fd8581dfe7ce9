package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/dto"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/SscSPs/banking_backoffice/internal/utils"
	"github.com/SscSPs/banking_backoffice/internal/utils/accounting"
	"github.com/SscSPs/banking_backoffice/internal/utils/banking"
	"github.com/shopspring/decimal"
)

const (
	defaultDepositDescription    = "Deposit"
	defaultWithdrawalDescription = "Withdrawal"
	defaultRecipientName         = "Beneficiary"
	transferInPrefix             = "Transfer received - "
)

// ledgerService moves money between accounts and records every movement in the transaction log.
type ledgerService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	generator       *banking.Generator
	bank            config.BankConfig
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repos portsrepo.RepositoryProvider, generator *banking.Generator, bank config.BankConfig) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService:     BaseService{txManager: repos.TxManager},
		accountRepo:     repos.AccountRepo,
		transactionRepo: repos.TransactionRepo,
		generator:       generator,
		bank:            bank,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Deposit credits an active account owned by userID.
func (s *ledgerService) Deposit(ctx context.Context, userID int64, req dto.DepositRequest) (*domain.LedgerReceipt, error) {
	if err := accounting.ValidateAmount(req.Amount, s.bank.MaxTransactionAmount); err != nil {
		return nil, err
	}
	description := describe(req.Description, defaultDepositDescription)

	var receipt *domain.LedgerReceipt
	err := s.atomically(ctx, "deposit", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := s.lockActiveAccount(ctx, uow, req.AccountID, userID)
		if err != nil {
			return err
		}
		reference, err := s.generator.TransactionReference()
		if err != nil {
			return err
		}
		txn, err := s.post(ctx, uow, acc, domain.TransactionDeposit, req.Amount, reference, func(t *domain.Transaction) {
			t.Description = description
		})
		if err != nil {
			return err
		}
		receipt = receiptFor(txn)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "deposit", req.AccountID, req.Amount)
		return nil, err
	}

	s.LogInfo(ctx, "Deposit completed",
		slog.Int64("account_id", receipt.AccountID),
		slog.String("reference", receipt.ReferenceNumber),
		slog.String("amount", accounting.FormatAmount(receipt.Amount)))
	return receipt, nil
}

// Withdraw debits an active account owned by userID within balance plus overdraft.
func (s *ledgerService) Withdraw(ctx context.Context, userID int64, req dto.WithdrawalRequest) (*domain.LedgerReceipt, error) {
	if err := accounting.ValidateAmount(req.Amount, s.bank.MaxTransactionAmount); err != nil {
		return nil, err
	}
	description := describe(req.Description, defaultWithdrawalDescription)

	var receipt *domain.LedgerReceipt
	err := s.atomically(ctx, "withdrawal", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := s.lockDebitableAccount(ctx, uow, req.AccountID, userID, req.Amount)
		if err != nil {
			return err
		}
		reference, err := s.generator.TransactionReference()
		if err != nil {
			return err
		}
		txn, err := s.post(ctx, uow, acc, domain.TransactionWithdrawal, req.Amount, reference, func(t *domain.Transaction) {
			t.Description = description
		})
		if err != nil {
			return err
		}
		receipt = receiptFor(txn)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "withdrawal", req.AccountID, req.Amount)
		return nil, err
	}

	s.LogInfo(ctx, "Withdrawal completed",
		slog.Int64("account_id", receipt.AccountID),
		slog.String("reference", receipt.ReferenceNumber),
		slog.String("amount", accounting.FormatAmount(receipt.Amount)))
	return receipt, nil
}

// Transfer debits the source account and, when the recipient IBAN belongs to an active
// account of this bank, credits it under the same reference. Otherwise only the debit leg is booked.
func (s *ledgerService) Transfer(ctx context.Context, userID int64, req dto.TransferRequest) (*domain.LedgerReceipt, error) {
	if err := accounting.ValidateAmount(req.Amount, s.bank.MaxTransactionAmount); err != nil {
		return nil, err
	}
	recipientIBAN := banking.NormalizeIBAN(req.RecipientIBAN)
	if err := banking.ValidateIBAN(recipientIBAN); err != nil {
		return nil, fmt.Errorf("%w: recipient %w", apperrors.ErrValidation, err)
	}
	recipientName := describe(req.RecipientName, defaultRecipientName)
	description := utils.SanitizeInput(req.Description)

	var receipt *domain.LedgerReceipt
	err := s.atomically(ctx, "transfer", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		source, err := s.lockDebitableAccount(ctx, uow, req.FromAccountID, userID, req.Amount)
		if err != nil {
			return err
		}
		if source.IBAN == recipientIBAN {
			return fmt.Errorf("%w: cannot transfer to the source account", apperrors.ErrValidation)
		}
		reference, err := s.generator.TransactionReference()
		if err != nil {
			return err
		}

		debit, err := s.post(ctx, uow, source, domain.TransactionTransferOut, req.Amount, reference, func(t *domain.Transaction) {
			t.Description = description
			t.RecipientIBAN = recipientIBAN
			t.RecipientName = recipientName
		})
		if err != nil {
			return err
		}
		receipt = receiptFor(debit)

		recipient, err := uow.Accounts().GetActiveAccountByIBANForUpdate(ctx, recipientIBAN)
		if err != nil {
			if isNotFound(err) {
				// External beneficiary: the debit leg stands on its own.
				return nil
			}
			return err
		}
		if recipient.Currency != source.Currency {
			return fmt.Errorf("%w: currency mismatch between %s and %s", apperrors.ErrValidation, source.Currency, recipient.Currency)
		}

		credit, err := s.post(ctx, uow, recipient, domain.TransactionTransferIn, req.Amount, reference, func(t *domain.Transaction) {
			t.Description = transferInPrefix + description
			t.RecipientIBAN = source.IBAN
			t.RecipientName = recipientName
		})
		if err != nil {
			return err
		}
		receipt.CreditTransactionID = &credit.TransactionID
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "transfer", req.FromAccountID, req.Amount)
		return nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.Int64("account_id", receipt.AccountID),
		slog.String("reference", receipt.ReferenceNumber),
		slog.String("amount", accounting.FormatAmount(receipt.Amount)),
		slog.Bool("internal", receipt.IsInternalTransfer()))
	return receipt, nil
}

// Pay debits an account in favour of a merchant.
func (s *ledgerService) Pay(ctx context.Context, userID int64, req dto.PaymentRequest) (*domain.LedgerReceipt, error) {
	if err := accounting.ValidateAmount(req.Amount, s.bank.MaxTransactionAmount); err != nil {
		return nil, err
	}
	merchant := utils.SanitizeInput(req.Merchant)
	if merchant == "" {
		return nil, fmt.Errorf("%w: merchant is required", apperrors.ErrValidation)
	}
	category := utils.SanitizeInput(req.Category)
	if s.bank.EnforcePaymentCategories && !domain.IsPaymentCategory(category) {
		return nil, fmt.Errorf("%w: unknown payment category %q", apperrors.ErrValidation, category)
	}

	var receipt *domain.LedgerReceipt
	err := s.atomically(ctx, "payment", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := s.lockDebitableAccount(ctx, uow, req.AccountID, userID, req.Amount)
		if err != nil {
			return err
		}
		reference, err := s.generator.TransactionReference()
		if err != nil {
			return err
		}
		txn, err := s.post(ctx, uow, acc, domain.TransactionPayment, req.Amount, reference, func(t *domain.Transaction) {
			t.Description = merchant
			t.RecipientName = merchant
			t.Category = category
		})
		if err != nil {
			return err
		}
		receipt = receiptFor(txn)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "payment", req.AccountID, req.Amount)
		return nil, err
	}

	s.LogInfo(ctx, "Payment completed",
		slog.Int64("account_id", receipt.AccountID),
		slog.String("reference", receipt.ReferenceNumber),
		slog.String("category", receipt.Category))
	return receipt, nil
}

// ListTransactions returns a page of the caller's history.
func (s *ledgerService) ListTransactions(ctx context.Context, userID int64, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	page := domain.Page{Number: params.Page, PerPage: params.PerPage}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.PerPage < 1 {
		page.PerPage = 20
	}
	if page.Number > domain.MaxPageNumber {
		return nil, fmt.Errorf("%w: page must not exceed %d", apperrors.ErrValidation, domain.MaxPageNumber)
	}

	if params.AccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *params.AccountID, userID); err != nil {
			return nil, err
		}
	}

	txns, total, err := s.transactionRepo.ListTransactions(ctx, userID, domain.TransactionFilter{
		AccountID: params.AccountID,
		Page:      page,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.Int64("user_id", userID))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		Pagination: dto.Pagination{
			Page:    page.Number,
			PerPage: page.PerPage,
			Total:   total,
			Pages:   page.TotalPages(total),
		},
	}, nil
}

// GetTransactionsByReference returns the caller-visible legs sharing a reference.
func (s *ledgerService) GetTransactionsByReference(ctx context.Context, userID int64, reference string) ([]domain.Transaction, error) {
	txns, err := s.transactionRepo.FindTransactionsByReference(ctx, userID, reference)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: reference %s", apperrors.ErrNotFound, reference)
	}
	return txns, nil
}

// lockActiveAccount locks the caller's account and refuses it unless it is active.
func (s *ledgerService) lockActiveAccount(ctx context.Context, uow portsrepo.UnitOfWork, accountID, userID int64) (*domain.Account, error) {
	acc, err := uow.Accounts().GetAccountForUpdate(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, fmt.Errorf("%w: account %d is %s", apperrors.ErrInactive, acc.AccountID, acc.Status)
	}
	return acc, nil
}

func (s *ledgerService) lockDebitableAccount(ctx context.Context, uow portsrepo.UnitOfWork, accountID, userID int64, amount decimal.Decimal) (*domain.Account, error) {
	acc, err := s.lockActiveAccount(ctx, uow, accountID, userID)
	if err != nil {
		return nil, err
	}
	if !acc.CanDebit(amount) {
		return nil, apperrors.NewInsufficientFundsError(acc.Balance, acc.OverdraftLimit, amount)
	}
	return acc, nil
}

// post applies one leg to a locked account and appends the matching log row.
func (s *ledgerService) post(ctx context.Context, uow portsrepo.UnitOfWork, acc *domain.Account, txnType domain.TransactionType,
	amount decimal.Decimal, reference string, decorate func(*domain.Transaction)) (*domain.Transaction, error) {
	delta := amount
	if !txnType.IsCredit() {
		delta = amount.Neg()
	}
	newBalance, err := uow.Accounts().ApplyBalanceDelta(ctx, acc.AccountID, delta)
	if err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ReferenceNumber: reference,
		AccountID:       acc.AccountID,
		TransactionType: txnType,
		Amount:          amount,
		BalanceAfter:    newBalance,
		Status:          domain.TransactionCompleted,
	}
	decorate(txn)
	if err := uow.Transactions().AppendTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) logFailure(ctx context.Context, err error, op string, accountID int64, amount decimal.Decimal) {
	attrs := []any{
		slog.String("operation", op),
		slog.Int64("account_id", accountID),
		slog.String("amount", amount.String()),
	}
	if isBusinessError(err) {
		s.LogDebug(ctx, "Ledger operation rejected", append(attrs, slog.String("reason", err.Error()))...)
		return
	}
	s.LogError(ctx, err, "Ledger operation failed", attrs...)
}

func receiptFor(txn *domain.Transaction) *domain.LedgerReceipt {
	return &domain.LedgerReceipt{
		TransactionID:   txn.TransactionID,
		ReferenceNumber: txn.ReferenceNumber,
		AccountID:       txn.AccountID,
		TransactionType: txn.TransactionType,
		Amount:          txn.Amount,
		NewBalance:      txn.BalanceAfter,
		RecipientIBAN:   txn.RecipientIBAN,
		RecipientName:   txn.RecipientName,
		Category:        txn.Category,
	}
}

// describe sanitizes free text and falls back to a default label.
func describe(text, fallback string) string {
	if clean := utils.SanitizeInput(text); clean != "" {
		return clean
	}
	return fallback
}
