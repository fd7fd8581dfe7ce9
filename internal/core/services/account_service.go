package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
)

type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	now             func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(repos portsrepo.RepositoryProvider) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService:     BaseService{txManager: repos.TxManager},
		accountRepo:     repos.AccountRepo,
		transactionRepo: repos.TransactionRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID, userID int64) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID, userID)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to get account", slog.Int64("account_id", accountID))
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) ListAccounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int64("user_id", userID))
		return nil, err
	}
	return accounts, nil
}

// GetSummary totals the user's balances and the flows booked since the start of the current month.
func (s *accountService) GetSummary(ctx context.Context, userID int64) (*domain.AccountSummary, error) {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.AccountSummary{TotalAccounts: len(accounts)}
	for _, acc := range accounts {
		summary.TotalBalance = summary.TotalBalance.Add(acc.Balance)
		switch acc.AccountType {
		case domain.AccountTypeChecking:
			summary.CheckingBalance = summary.CheckingBalance.Add(acc.Balance)
		case domain.AccountTypeSavings:
			summary.SavingsBalance = summary.SavingsBalance.Add(acc.Balance)
		}
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	totals, err := s.transactionRepo.SumByType(ctx, userID, monthStart)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate monthly flows", slog.Int64("user_id", userID))
		return nil, err
	}

	for txnType, amount := range totals {
		if txnType.IsCredit() {
			summary.MonthlyIncome = summary.MonthlyIncome.Add(amount)
		} else {
			summary.MonthlyExpenses = summary.MonthlyExpenses.Add(amount)
		}
	}
	return summary, nil
}

// CloseAccount moves an active, empty account to the closed status.
func (s *accountService) CloseAccount(ctx context.Context, accountID, userID int64) error {
	err := s.atomically(ctx, "close_account", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := uow.Accounts().GetAccountForUpdate(ctx, accountID, userID)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return fmt.Errorf("%w: account %d is %s", apperrors.ErrInactive, acc.AccountID, acc.Status)
		}
		if !acc.Balance.IsZero() {
			return fmt.Errorf("%w: account balance must be zero to close, current balance %s",
				apperrors.ErrValidation, acc.Balance.StringFixed(2))
		}
		return uow.Accounts().UpdateAccountStatus(ctx, acc.AccountID, domain.AccountStatusClosed)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.LogError(ctx, err, "Failed to close account", slog.Int64("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account closed", slog.Int64("account_id", accountID))
	return nil
}

// ReconcileAccount rebuilds the balance from the log and compares it with the stored balance.
func (s *accountService) ReconcileAccount(ctx context.Context, accountID, userID int64) (*domain.Reconciliation, error) {
	acc, err := s.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	ledger, count, err := s.transactionRepo.SumSignedAmounts(ctx, acc.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum transaction log", slog.Int64("account_id", accountID))
		return nil, err
	}

	rec := &domain.Reconciliation{
		AccountID:        acc.AccountID,
		StoredBalance:    acc.Balance,
		LedgerBalance:    ledger.Round(2),
		TransactionCount: count,
	}
	if !rec.Balanced() {
		s.GetLogger(ctx).Warn("Account balance does not match transaction log",
			slog.Int64("account_id", acc.AccountID),
			slog.String("stored", rec.StoredBalance.StringFixed(2)),
			slog.String("ledger", rec.LedgerBalance.StringFixed(2)),
			slog.String("difference", rec.StoredBalance.Sub(rec.LedgerBalance).StringFixed(2)))
	}
	return rec, nil
}

