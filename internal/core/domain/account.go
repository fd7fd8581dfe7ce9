package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the product type of a bank account.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeJoint    AccountType = "joint"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeJoint:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

// Account represents a customer bank account.
// Balance + OverdraftLimit must never go below zero once an operation commits.
type Account struct {
	AccountID      int64           `json:"accountID"`
	AccountNumber  string          `json:"accountNumber"`
	IBAN           string          `json:"iban"`
	UserID         int64           `json:"userID"`
	AccountType    AccountType     `json:"accountType"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	OverdraftLimit decimal.Decimal `json:"overdraftLimit"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	Status         AccountStatus   `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// IsActive reports whether money can move through the account.
func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Available is the amount that can still be debited, overdraft included.
func (a Account) Available() decimal.Decimal {
	return a.Balance.Add(a.OverdraftLimit)
}

// CanDebit reports whether amount fits within balance plus overdraft.
func (a Account) CanDebit(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Available())
}

// AccountSummary aggregates a user's accounts and the current month's flows.
type AccountSummary struct {
	TotalAccounts   int             `json:"totalAccounts"`
	TotalBalance    decimal.Decimal `json:"totalBalance"`
	CheckingBalance decimal.Decimal `json:"checkingBalance"`
	SavingsBalance  decimal.Decimal `json:"savingsBalance"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
}

// MonthlySavings is income minus expenses for the period.
func (s AccountSummary) MonthlySavings() decimal.Decimal {
	return s.MonthlyIncome.Sub(s.MonthlyExpenses)
}

// Reconciliation compares a stored balance with the one rebuilt from the transaction log.
type Reconciliation struct {
	AccountID        int64           `json:"accountID"`
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	TransactionCount int             `json:"transactionCount"`
}

// Balanced reports whether the log and the stored balance agree.
func (r Reconciliation) Balanced() bool {
	return r.StoredBalance.Equal(r.LedgerBalance)
}
