package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the row layout of the transactions table.
// AccountNumber and AccountType are only filled by history queries joining accounts.
type Transaction struct {
	TransactionID   int64           `db:"id"`
	ReferenceNumber string          `db:"reference_number"`
	AccountID       int64           `db:"account_id"`
	TransactionType string          `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	Description     sql.NullString  `db:"description"`
	RecipientIBAN   sql.NullString  `db:"recipient_iban"`
	RecipientName   sql.NullString  `db:"recipient_name"`
	Category        sql.NullString  `db:"category"`
	Status          string          `db:"status"`
	TransactionDate time.Time       `db:"transaction_date"`

	AccountNumber sql.NullString `db:"account_number"`
	AccountType   sql.NullString `db:"account_type"`
}
