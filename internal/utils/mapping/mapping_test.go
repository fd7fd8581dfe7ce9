package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToModelTransaction_EmptyOptionalFieldsBecomeNull(t *testing.T) {
	m := mapping.ToModelTransaction(domain.Transaction{
		ReferenceNumber: "TRX20240101000000ABCDEF",
		TransactionType: domain.TransactionDeposit,
		Amount:          decimal.RequireFromString("10.00"),
		Description:     "Deposit",
	})

	assert.True(t, m.Description.Valid)
	assert.False(t, m.RecipientIBAN.Valid)
	assert.False(t, m.RecipientName.Valid)
	assert.False(t, m.Category.Valid)
	assert.Equal(t, "deposit", m.TransactionType)
}

func TestToModelUser_LastLogin(t *testing.T) {
	now := time.Now().UTC()
	withLogin := mapping.ToModelUser(domain.User{UserID: 1, LastLogin: &now})
	assert.True(t, withLogin.LastLogin.Valid)

	back := mapping.ToDomainUser(withLogin)
	if assert.NotNil(t, back.LastLogin) {
		assert.True(t, now.Equal(*back.LastLogin))
	}

	withoutLogin := mapping.ToDomainUser(mapping.ToModelUser(domain.User{UserID: 2}))
	assert.Nil(t, withoutLogin.LastLogin)
}
