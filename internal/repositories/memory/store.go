package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// state is everything the store persists. A unit of work mutates a private
// copy which replaces the live state only when the unit succeeds.
type state struct {
	users        map[int64]domain.User
	accounts     map[int64]domain.Account
	transactions []domain.Transaction

	nextUserID        int64
	nextAccountID     int64
	nextTransactionID int64
}

func newState() *state {
	return &state{
		users:    make(map[int64]domain.User),
		accounts: make(map[int64]domain.Account),
	}
}

func (s *state) clone() *state {
	return &state{
		users:             maps.Clone(s.users),
		accounts:          maps.Clone(s.accounts),
		transactions:      slices.Clone(s.transactions),
		nextUserID:        s.nextUserID,
		nextAccountID:     s.nextAccountID,
		nextTransactionID: s.nextTransactionID,
	}
}

// Store is a concurrency-safe in-process implementation of the repositories.
// Units of work are serialized by one mutex, which gives the same guarantees
// as row locks held until commit.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewRepositoryProvider exposes a fresh Store through the repository ports.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return NewStore().RepositoryProvider()
}

// RepositoryProvider exposes s through the repository ports.
func (s *Store) RepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       s,
		AccountRepo:     s,
		TransactionRepo: s,
		UserRepo:        s,
	}
}

var (
	_ portsrepo.TransactionManager          = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade     = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade        = (*Store)(nil)
)

// WithinTx runs fn against a private copy of the state and publishes it if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := &unitOfWork{state: s.state.clone(), now: s.now}
	if err := fn(context.WithoutCancel(ctx), work); err != nil {
		return err
	}
	s.state = work.state
	return nil
}

// unitOfWork implements every tx store over the private state copy.
type unitOfWork struct {
	state *state
	now   func() time.Time
}

func (u *unitOfWork) Accounts() portsrepo.AccountTxStore         { return u }
func (u *unitOfWork) Transactions() portsrepo.TransactionTxStore { return u }
func (u *unitOfWork) Users() portsrepo.UserTxStore               { return u }

func (u *unitOfWork) CreateAccount(_ context.Context, account *domain.Account) error {
	for _, existing := range u.state.accounts {
		if existing.AccountNumber == account.AccountNumber || existing.IBAN == account.IBAN {
			return apperrors.ErrIdentifierCollision
		}
	}
	if _, ok := u.state.users[account.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	u.state.nextAccountID++
	account.AccountID = u.state.nextAccountID
	account.CreatedAt = u.now()
	u.state.accounts[account.AccountID] = *account
	return nil
}

func (u *unitOfWork) GetAccountForUpdate(_ context.Context, accountID, userID int64) (*domain.Account, error) {
	acc, ok := u.state.accounts[accountID]
	if !ok || acc.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (u *unitOfWork) GetActiveAccountByIBANForUpdate(_ context.Context, iban string) (*domain.Account, error) {
	for _, acc := range u.state.accounts {
		if acc.IBAN == iban && acc.IsActive() {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (u *unitOfWork) ApplyBalanceDelta(_ context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	acc, ok := u.state.accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	next := acc.Balance.Add(delta)
	if next.Add(acc.OverdraftLimit).IsNegative() {
		return decimal.Zero, apperrors.ErrInsufficientFunds
	}
	acc.Balance = next
	u.state.accounts[accountID] = acc
	return next, nil
}

func (u *unitOfWork) UpdateAccountStatus(_ context.Context, accountID int64, status domain.AccountStatus) error {
	acc, ok := u.state.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.Status = status
	u.state.accounts[accountID] = acc
	return nil
}

func (u *unitOfWork) AppendTransaction(_ context.Context, txn *domain.Transaction) error {
	if !txn.Amount.IsPositive() {
		return apperrors.ErrValidation
	}
	if _, ok := u.state.accounts[txn.AccountID]; !ok {
		return apperrors.ErrNotFound
	}
	for _, existing := range u.state.transactions {
		if existing.ReferenceNumber == txn.ReferenceNumber && existing.TransactionType == txn.TransactionType {
			return apperrors.ErrIdentifierCollision
		}
	}
	u.state.nextTransactionID++
	txn.TransactionID = u.state.nextTransactionID
	txn.TransactionDate = u.now()
	u.state.transactions = append(u.state.transactions, *txn)
	return nil
}

func (u *unitOfWork) CreateUser(_ context.Context, user *domain.User) error {
	for _, existing := range u.state.users {
		if strings.EqualFold(existing.Email, user.Email) || strings.EqualFold(existing.Username, user.Username) {
			return apperrors.ErrDuplicate
		}
	}
	u.state.nextUserID++
	user.UserID = u.state.nextUserID
	user.CreatedAt = u.now()
	u.state.users[user.UserID] = *user
	return nil
}
