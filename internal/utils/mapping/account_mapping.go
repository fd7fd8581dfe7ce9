package mapping

import (
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/SscSPs/banking_backoffice/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		AccountNumber:  d.AccountNumber,
		IBAN:           d.IBAN,
		UserID:         d.UserID,
		AccountType:    string(d.AccountType),
		Balance:        d.Balance,
		Currency:       d.Currency,
		OverdraftLimit: d.OverdraftLimit,
		InterestRate:   d.InterestRate,
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		AccountNumber:  m.AccountNumber,
		IBAN:           m.IBAN,
		UserID:         m.UserID,
		AccountType:    domain.AccountType(m.AccountType),
		Balance:        m.Balance,
		Currency:       m.Currency,
		OverdraftLimit: m.OverdraftLimit,
		InterestRate:   m.InterestRate,
		Status:         domain.AccountStatus(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
