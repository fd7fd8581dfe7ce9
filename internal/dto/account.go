package dto

import (
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
)

// AccountResponse defines the data returned for an account.
// Money fields are fixed two-decimal strings.
type AccountResponse struct {
	AccountID        int64                `json:"accountID"`
	AccountNumber    string               `json:"accountNumber"`
	IBAN             string               `json:"iban"`
	AccountType      domain.AccountType   `json:"accountType"`
	Balance          string               `json:"balance"`
	AvailableBalance string               `json:"availableBalance"`
	OverdraftLimit   string               `json:"overdraftLimit"`
	InterestRate     string               `json:"interestRate"`
	Currency         string               `json:"currency"`
	Status           domain.AccountStatus `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountSummaryResponse aggregates balances and the current month's flows.
type AccountSummaryResponse struct {
	TotalAccounts   int    `json:"totalAccounts"`
	TotalBalance    string `json:"totalBalance"`
	CheckingBalance string `json:"checkingBalance"`
	SavingsBalance  string `json:"savingsBalance"`
	MonthlyIncome   string `json:"monthlyIncome"`
	MonthlyExpenses string `json:"monthlyExpenses"`
	MonthlySavings  string `json:"monthlySavings"`
}

// ReconciliationResponse reports whether the transaction log explains the stored balance.
type ReconciliationResponse struct {
	AccountID        int64  `json:"accountID"`
	StoredBalance    string `json:"storedBalance"`
	LedgerBalance    string `json:"ledgerBalance"`
	TransactionCount int    `json:"transactionCount"`
	Balanced         bool   `json:"balanced"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		AccountNumber:    acc.AccountNumber,
		IBAN:             acc.IBAN,
		AccountType:      acc.AccountType,
		Balance:          acc.Balance.StringFixed(2),
		AvailableBalance: acc.Available().StringFixed(2),
		OverdraftLimit:   acc.OverdraftLimit.StringFixed(2),
		InterestRate:     acc.InterestRate.StringFixed(2),
		Currency:         acc.Currency,
		Status:           acc.Status,
		CreatedAt:        acc.CreatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain.Account.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return resp
}

// ToAccountSummaryResponse converts a domain.AccountSummary.
func ToAccountSummaryResponse(s *domain.AccountSummary) AccountSummaryResponse {
	return AccountSummaryResponse{
		TotalAccounts:   s.TotalAccounts,
		TotalBalance:    s.TotalBalance.StringFixed(2),
		CheckingBalance: s.CheckingBalance.StringFixed(2),
		SavingsBalance:  s.SavingsBalance.StringFixed(2),
		MonthlyIncome:   s.MonthlyIncome.StringFixed(2),
		MonthlyExpenses: s.MonthlyExpenses.StringFixed(2),
		MonthlySavings:  s.MonthlySavings().StringFixed(2),
	}
}

// ToReconciliationResponse converts a domain.Reconciliation.
func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		AccountID:        r.AccountID,
		StoredBalance:    r.StoredBalance.StringFixed(2),
		LedgerBalance:    r.LedgerBalance.StringFixed(2),
		TransactionCount: r.TransactionCount,
		Balanced:         r.Balanced(),
	}
}
