package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of balance-affecting event.
type TransactionType string

const (
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionPayment     TransactionType = "payment"
)

// IsCredit reports whether the type adds to the account balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionDeposit || t == TransactionTransferIn
}

// TransactionStatus is the settlement state of a transaction row.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable entry of the transaction log.
// Amount is always positive; the direction comes from TransactionType.
type Transaction struct {
	TransactionID   int64             `json:"transactionID"`
	ReferenceNumber string            `json:"referenceNumber"`
	AccountID       int64             `json:"accountID"`
	TransactionType TransactionType   `json:"transactionType"`
	Amount          decimal.Decimal   `json:"amount"`
	BalanceAfter    decimal.Decimal   `json:"balanceAfter"`
	Description     string            `json:"description"`
	RecipientIBAN   string            `json:"recipientIBAN,omitempty"`
	RecipientName   string            `json:"recipientName,omitempty"`
	Category        string            `json:"category,omitempty"`
	Status          TransactionStatus `json:"status"`
	TransactionDate time.Time         `json:"transactionDate"`

	// Populated by history queries only.
	AccountNumber string      `json:"accountNumber,omitempty"`
	AccountType   AccountType `json:"accountType,omitempty"`
}

// SignedAmount returns the amount with the sign it contributes to the balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TransactionFilter narrows a history query.
type TransactionFilter struct {
	AccountID *int64
	Page      Page
}

// PaymentCategories lists the categories accepted for payments.
var PaymentCategories = []string{
	"groceries", "housing", "transport", "leisure", "health",
	"shopping", "services", "salary", "refund", "other",
}

// IsPaymentCategory reports whether c is one of PaymentCategories.
func IsPaymentCategory(c string) bool {
	for _, known := range PaymentCategories {
		if c == known {
			return true
		}
	}
	return false
}

// LedgerReceipt is the outcome of a committed money movement.
type LedgerReceipt struct {
	TransactionID   int64           `json:"transactionID"`
	ReferenceNumber string          `json:"referenceNumber"`
	AccountID       int64           `json:"accountID"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	RecipientIBAN   string          `json:"recipientIBAN,omitempty"`
	RecipientName   string          `json:"recipientName,omitempty"`
	Category        string          `json:"category,omitempty"`
	// CreditTransactionID is set when a transfer landed on an internal account.
	CreditTransactionID *int64 `json:"creditTransactionID,omitempty"`
}

// IsInternalTransfer reports whether both transfer legs were booked.
func (r LedgerReceipt) IsInternalTransfer() bool {
	return r.CreditTransactionID != nil
}
