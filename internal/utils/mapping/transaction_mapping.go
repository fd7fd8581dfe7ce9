package mapping

import (
	"database/sql"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		ReferenceNumber: d.ReferenceNumber,
		AccountID:       d.AccountID,
		TransactionType: string(d.TransactionType),
		Amount:          d.Amount,
		BalanceAfter:    d.BalanceAfter,
		Description:     nullString(d.Description),
		RecipientIBAN:   nullString(d.RecipientIBAN),
		RecipientName:   nullString(d.RecipientName),
		Category:        nullString(d.Category),
		Status:          string(d.Status),
		TransactionDate: d.TransactionDate,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		ReferenceNumber: m.ReferenceNumber,
		AccountID:       m.AccountID,
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		BalanceAfter:    m.BalanceAfter,
		Description:     m.Description.String,
		RecipientIBAN:   m.RecipientIBAN.String,
		RecipientName:   m.RecipientName.String,
		Category:        m.Category.String,
		Status:          domain.TransactionStatus(m.Status),
		TransactionDate: m.TransactionDate,
		AccountNumber:   m.AccountNumber.String,
		AccountType:     domain.AccountType(m.AccountType.String),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
