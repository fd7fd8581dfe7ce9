package domain_test

import (
	"math"
	"testing"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_SignedAmount(t *testing.T) {
	tests := []struct {
		name string
		typ  domain.TransactionType
		want string
	}{
		{name: "deposit credits", typ: domain.TransactionDeposit, want: "25.50"},
		{name: "transfer in credits", typ: domain.TransactionTransferIn, want: "25.50"},
		{name: "withdrawal debits", typ: domain.TransactionWithdrawal, want: "-25.50"},
		{name: "transfer out debits", typ: domain.TransactionTransferOut, want: "-25.50"},
		{name: "payment debits", typ: domain.TransactionPayment, want: "-25.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := domain.Transaction{TransactionType: tt.typ, Amount: decimal.RequireFromString("25.50")}
			assert.Equal(t, tt.want, tx.SignedAmount().StringFixed(2))
		})
	}
}

func TestAccount_CanDebit(t *testing.T) {
	acc := domain.Account{
		Balance:        decimal.RequireFromString("100.00"),
		OverdraftLimit: decimal.RequireFromString("50.00"),
	}

	assert.True(t, acc.CanDebit(decimal.RequireFromString("150.00")))
	assert.False(t, acc.CanDebit(decimal.RequireFromString("150.01")))
	assert.Equal(t, "150.00", acc.Available().StringFixed(2))
}

func TestPage_OffsetAndTotalPages(t *testing.T) {
	p := domain.Page{Number: 3, PerPage: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 3, p.TotalPages(41))
	assert.Equal(t, 0, domain.Page{Number: 1, PerPage: 20}.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
}

func TestPage_OffsetSaturates(t *testing.T) {
	huge := domain.Page{Number: math.MaxInt/100 + 2, PerPage: 100}
	assert.Equal(t, math.MaxInt, huge.Offset())
	assert.Equal(t, 0, domain.Page{Number: 5, PerPage: 0}.Offset())
}

func TestIsPaymentCategory(t *testing.T) {
	assert.True(t, domain.IsPaymentCategory("groceries"))
	assert.False(t, domain.IsPaymentCategory("gambling"))
	assert.False(t, domain.IsPaymentCategory(""))
}
