package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindAccountByID(_ context.Context, accountID, userID int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.state.accounts[accountID]
	if !ok || acc.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) ListAccountsByUser(_ context.Context, userID int64) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Account
	for _, acc := range s.state.accounts {
		if acc.UserID == userID && acc.Status != domain.AccountStatusClosed {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// withAccountInfo copies the joined account columns onto a history row.
func (s *Store) withAccountInfo(txn domain.Transaction) domain.Transaction {
	if acc, ok := s.state.accounts[txn.AccountID]; ok {
		txn.AccountNumber = acc.AccountNumber
		txn.AccountType = acc.AccountType
	}
	return txn
}

func (s *Store) ownedBy(txn domain.Transaction, userID int64) bool {
	acc, ok := s.state.accounts[txn.AccountID]
	return ok && acc.UserID == userID
}

func (s *Store) ListTransactions(_ context.Context, userID int64, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Transaction
	// Newest first: the log is append-only so reverse insertion order.
	for i := len(s.state.transactions) - 1; i >= 0; i-- {
		txn := s.state.transactions[i]
		if !s.ownedBy(txn, userID) {
			continue
		}
		if filter.AccountID != nil && txn.AccountID != *filter.AccountID {
			continue
		}
		matched = append(matched, s.withAccountInfo(txn))
	}

	total := len(matched)
	start := filter.Page.Offset()
	if start >= total {
		return []domain.Transaction{}, total, nil
	}
	end := total
	if filter.Page.PerPage > 0 && start+filter.Page.PerPage < total {
		end = start + filter.Page.PerPage
	}
	return matched[start:end], total, nil
}

func (s *Store) FindTransactionsByReference(_ context.Context, userID int64, reference string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Transaction
	for _, txn := range s.state.transactions {
		if txn.ReferenceNumber == reference && s.ownedBy(txn, userID) {
			out = append(out, s.withAccountInfo(txn))
		}
	}
	return out, nil
}

func (s *Store) SumByType(_ context.Context, userID int64, since time.Time) (map[domain.TransactionType]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sums := make(map[domain.TransactionType]decimal.Decimal)
	for _, txn := range s.state.transactions {
		if txn.Status != domain.TransactionCompleted || txn.TransactionDate.Before(since) || !s.ownedBy(txn, userID) {
			continue
		}
		sums[txn.TransactionType] = sums[txn.TransactionType].Add(txn.Amount)
	}
	return sums, nil
}

func (s *Store) SumSignedAmounts(_ context.Context, accountID int64) (decimal.Decimal, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	count := 0
	for _, txn := range s.state.transactions {
		if txn.AccountID == accountID && txn.Status == domain.TransactionCompleted {
			sum = sum.Add(txn.SignedAmount())
			count++
		}
	}
	return sum, count, nil
}

func (s *Store) FindUserByID(_ context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.state.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.state.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.state.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.LastLogin = &at
	s.state.users[userID] = user
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.state.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.state.users[userID] = user
	return nil
}
