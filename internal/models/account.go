package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the row layout of the accounts table.
type Account struct {
	AccountID      int64           `db:"id"`
	AccountNumber  string          `db:"account_number"`
	IBAN           string          `db:"iban"`
	UserID         int64           `db:"user_id"`
	AccountType    string          `db:"account_type"`
	Balance        decimal.Decimal `db:"balance"`
	Currency       string          `db:"currency"`
	OverdraftLimit decimal.Decimal `db:"overdraft_limit"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	Status         string          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
}
