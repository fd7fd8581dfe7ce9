package dto

import (
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest credits an account owned by the caller.
// Amount accepts a JSON string or number and is validated by the ledger.
type DepositRequest struct {
	AccountID   int64           `json:"accountID" binding:"required,min=1"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
}

// WithdrawalRequest debits an account owned by the caller.
type WithdrawalRequest struct {
	AccountID   int64           `json:"accountID" binding:"required,min=1"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
}

// TransferRequest moves money from a caller-owned account to an IBAN.
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountID" binding:"required,min=1"`
	RecipientIBAN string          `json:"recipientIBAN" binding:"required,max=34"`
	RecipientName string          `json:"recipientName" binding:"max=100"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" binding:"max=255"`
}

// PaymentRequest pays a merchant from a caller-owned account.
type PaymentRequest struct {
	AccountID int64           `json:"accountID" binding:"required,min=1"`
	Amount    decimal.Decimal `json:"amount"`
	Merchant  string          `json:"merchant" binding:"required,max=100"`
	Category  string          `json:"category" binding:"required"`
}

// LedgerReceiptResponse is returned after a money movement commits.
type LedgerReceiptResponse struct {
	TransactionID       int64                  `json:"transactionID"`
	ReferenceNumber     string                 `json:"referenceNumber"`
	AccountID           int64                  `json:"accountID"`
	TransactionType     domain.TransactionType `json:"transactionType"`
	Amount              string                 `json:"amount"`
	NewBalance          string                 `json:"newBalance"`
	RecipientIBAN       string                 `json:"recipientIBAN,omitempty"`
	RecipientName       string                 `json:"recipientName,omitempty"`
	Category            string                 `json:"category,omitempty"`
	InternalTransfer    bool                   `json:"internalTransfer,omitempty"`
	CreditTransactionID *int64                 `json:"creditTransactionID,omitempty"`
}

// TransactionResponse is one row of the transaction history.
type TransactionResponse struct {
	TransactionID   int64                    `json:"transactionID"`
	ReferenceNumber string                   `json:"referenceNumber"`
	AccountID       int64                    `json:"accountID"`
	AccountNumber   string                   `json:"accountNumber,omitempty"`
	AccountType     domain.AccountType       `json:"accountType,omitempty"`
	TransactionType domain.TransactionType   `json:"transactionType"`
	Amount          string                   `json:"amount"`
	BalanceAfter    string                   `json:"balanceAfter"`
	Description     string                   `json:"description"`
	RecipientIBAN   string                   `json:"recipientIBAN,omitempty"`
	RecipientName   string                   `json:"recipientName,omitempty"`
	Category        string                   `json:"category,omitempty"`
	Status          domain.TransactionStatus `json:"status"`
	TransactionDate time.Time                `json:"transactionDate"`
}

// ListTransactionsParams defines query parameters for the history endpoint.
type ListTransactionsParams struct {
	AccountID *int64 `form:"account_id" binding:"omitempty,min=1"`
	Page      int    `form:"page,default=1" binding:"min=1,max=100000"`
	PerPage   int    `form:"per_page,default=20" binding:"min=1,max=100"`
}

// Pagination describes the page returned.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// ListTransactionsResponse wraps a page of history.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

// ListTransactionsByReferenceResponse wraps the legs sharing a reference.
type ListTransactionsByReferenceResponse struct {
	ReferenceNumber string                `json:"referenceNumber"`
	Transactions    []TransactionResponse `json:"transactions"`
}

// ToLedgerReceiptResponse converts a domain.LedgerReceipt.
func ToLedgerReceiptResponse(r *domain.LedgerReceipt) LedgerReceiptResponse {
	return LedgerReceiptResponse{
		TransactionID:       r.TransactionID,
		ReferenceNumber:     r.ReferenceNumber,
		AccountID:           r.AccountID,
		TransactionType:     r.TransactionType,
		Amount:              r.Amount.StringFixed(2),
		NewBalance:          r.NewBalance.StringFixed(2),
		RecipientIBAN:       r.RecipientIBAN,
		RecipientName:       r.RecipientName,
		Category:            r.Category,
		InternalTransfer:    r.IsInternalTransfer(),
		CreditTransactionID: r.CreditTransactionID,
	}
}

// ToTransactionResponse converts a domain.Transaction.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		ReferenceNumber: t.ReferenceNumber,
		AccountID:       t.AccountID,
		AccountNumber:   t.AccountNumber,
		AccountType:     t.AccountType,
		TransactionType: t.TransactionType,
		Amount:          t.Amount.StringFixed(2),
		BalanceAfter:    t.BalanceAfter.StringFixed(2),
		Description:     t.Description,
		RecipientIBAN:   t.RecipientIBAN,
		RecipientName:   t.RecipientName,
		Category:        t.Category,
		Status:          t.Status,
		TransactionDate: t.TransactionDate,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
