package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/core/services"
	"github.com/SscSPs/banking_backoffice/internal/dto"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/SscSPs/banking_backoffice/internal/repositories/memory"
	"github.com/SscSPs/banking_backoffice/internal/utils/banking"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testPassword     = "Str0ng!Pass"
	externalTestIBAN = "DE89370400440532013000"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Mock TransactionManager ---
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	store   *memory.Store
	repos   portsrepo.RepositoryProvider
	bank    config.BankConfig
	ledger  portssvc.LedgerSvcFacade
	users   portssvc.UserSvcFacade
	account portssvc.AccountSvcFacade
	ctx     context.Context
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.repos = suite.store.RepositoryProvider()
	suite.bank = config.DefaultBankConfig()
	suite.bank.DefaultOverdraftLimit = amount("50.00")
	generator := banking.NewGenerator(suite.bank.CountryCode, suite.bank.BankCode, suite.bank.BranchCode)

	suite.ledger = services.NewLedgerService(suite.repos, generator, suite.bank)
	suite.users = services.NewUserService(suite.repos, generator, suite.bank)
	suite.account = services.NewAccountService(suite.repos)
	suite.ctx = context.Background()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) register(username string) (*domain.User, *domain.Account) {
	user, acc, err := suite.users.Register(suite.ctx, dto.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		FirstName: "Test",
		LastName:  "User",
	})
	suite.Require().NoError(err)
	return user, acc
}

func (suite *LedgerServiceTestSuite) deposit(userID, accountID int64, value string) *domain.LedgerReceipt {
	receipt, err := suite.ledger.Deposit(suite.ctx, userID, dto.DepositRequest{AccountID: accountID, Amount: amount(value)})
	suite.Require().NoError(err)
	return receipt
}

func (suite *LedgerServiceTestSuite) balanceOf(userID, accountID int64) string {
	acc, err := suite.account.GetAccountByID(suite.ctx, accountID, userID)
	suite.Require().NoError(err)
	return acc.Balance.StringFixed(2)
}

func (suite *LedgerServiceTestSuite) historyCount(userID, accountID int64) int {
	page, err := suite.ledger.ListTransactions(suite.ctx, userID, dto.ListTransactionsParams{AccountID: &accountID, Page: 1, PerPage: 100})
	suite.Require().NoError(err)
	return page.Pagination.Total
}

func (suite *LedgerServiceTestSuite) assertReconciled(userID, accountID int64) {
	rec, err := suite.account.ReconcileAccount(suite.ctx, accountID, userID)
	suite.Require().NoError(err)
	suite.True(rec.Balanced(), "stored %s, ledger %s", rec.StoredBalance, rec.LedgerBalance)
}

// --- Tests ---

func (suite *LedgerServiceTestSuite) TestDepositThenWithdraw() {
	user, acc := suite.register("alice")

	dep := suite.deposit(user.UserID, acc.AccountID, "100.00")
	suite.Equal("100.00", dep.NewBalance.StringFixed(2))
	suite.Equal(domain.TransactionDeposit, dep.TransactionType)

	wd, err := suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("30.50")})
	suite.Require().NoError(err)
	suite.Equal("69.50", wd.NewBalance.StringFixed(2))
	suite.NotEqual(dep.ReferenceNumber, wd.ReferenceNumber)
	suite.Regexp(`^TRX\d{14}[A-Z0-9]{6}$`, wd.ReferenceNumber)

	suite.Equal("69.50", suite.balanceOf(user.UserID, acc.AccountID))
	suite.Equal(2, suite.historyCount(user.UserID, acc.AccountID))
	suite.assertReconciled(user.UserID, acc.AccountID)
}

func (suite *LedgerServiceTestSuite) TestDefaultDescriptions() {
	user, acc := suite.register("bob")
	suite.deposit(user.UserID, acc.AccountID, "10.00")
	_, err := suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("1.00"), Description: "  "})
	suite.Require().NoError(err)

	page, err := suite.ledger.ListTransactions(suite.ctx, user.UserID, dto.ListTransactionsParams{Page: 1, PerPage: 10})
	suite.Require().NoError(err)
	suite.Require().Len(page.Transactions, 2)
	// Newest first.
	suite.Equal("Withdrawal", page.Transactions[0].Description)
	suite.Equal("Deposit", page.Transactions[1].Description)
	suite.Equal(acc.AccountNumber, page.Transactions[0].AccountNumber)
}

func (suite *LedgerServiceTestSuite) TestOverdraftBoundary() {
	user, acc := suite.register("carol")
	suite.deposit(user.UserID, acc.AccountID, "100.00")

	wd, err := suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("140.00")})
	suite.Require().NoError(err)
	suite.Equal("-40.00", wd.NewBalance.StringFixed(2))

	_, err = suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("160.00")})
	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrInsufficientFunds))

	var fundsErr *apperrors.InsufficientFundsError
	suite.Require().True(errors.As(err, &fundsErr))
	suite.Equal("-40.00", fundsErr.Balance.StringFixed(2))
	suite.Equal("160.00", fundsErr.Requested.StringFixed(2))
	suite.Equal("10.00", fundsErr.Available.StringFixed(2))

	// Nothing changed.
	suite.Equal("-40.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.Equal(2, suite.historyCount(user.UserID, acc.AccountID))
	suite.assertReconciled(user.UserID, acc.AccountID)
}

func (suite *LedgerServiceTestSuite) TestConcurrentWithdrawalsSerialize() {
	user, acc := suite.register("dave")
	suite.deposit(user.UserID, acc.AccountID, "100.00")

	const workers = 2
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("100.00")})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, apperrors.ErrInsufficientFunds) {
				rejected++
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, succeeded)
	suite.Equal(1, rejected)
	suite.Equal("0.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.assertReconciled(user.UserID, acc.AccountID)
}

func (suite *LedgerServiceTestSuite) TestInternalTransfer() {
	sender, from := suite.register("erin")
	receiver, to := suite.register("frank")
	suite.deposit(sender.UserID, from.AccountID, "200.00")

	receipt, err := suite.ledger.Transfer(suite.ctx, sender.UserID, dto.TransferRequest{
		FromAccountID: from.AccountID,
		RecipientIBAN: to.IBAN,
		Amount:        amount("75.00"),
		Description:   "rent",
	})
	suite.Require().NoError(err)
	suite.True(receipt.IsInternalTransfer())
	suite.Equal(domain.TransactionTransferOut, receipt.TransactionType)
	suite.Equal("125.00", receipt.NewBalance.StringFixed(2))
	suite.Equal("Beneficiary", receipt.RecipientName)

	suite.Equal("125.00", suite.balanceOf(sender.UserID, from.AccountID))
	suite.Equal("75.00", suite.balanceOf(receiver.UserID, to.AccountID))

	senderLegs, err := suite.ledger.GetTransactionsByReference(suite.ctx, sender.UserID, receipt.ReferenceNumber)
	suite.Require().NoError(err)
	suite.Require().Len(senderLegs, 1)
	suite.Equal(domain.TransactionTransferOut, senderLegs[0].TransactionType)

	receiverLegs, err := suite.ledger.GetTransactionsByReference(suite.ctx, receiver.UserID, receipt.ReferenceNumber)
	suite.Require().NoError(err)
	suite.Require().Len(receiverLegs, 1)
	suite.Equal(domain.TransactionTransferIn, receiverLegs[0].TransactionType)
	suite.Equal("Transfer received - rent", receiverLegs[0].Description)
	suite.Equal(*receipt.CreditTransactionID, receiverLegs[0].TransactionID)

	suite.assertReconciled(sender.UserID, from.AccountID)
	suite.assertReconciled(receiver.UserID, to.AccountID)
}

func (suite *LedgerServiceTestSuite) TestExternalTransferIsDebitOnly() {
	user, acc := suite.register("grace")
	suite.deposit(user.UserID, acc.AccountID, "50.00")

	receipt, err := suite.ledger.Transfer(suite.ctx, user.UserID, dto.TransferRequest{
		FromAccountID: acc.AccountID,
		RecipientIBAN: "de89 3704 0044 0532 0130 00",
		RecipientName: "Landlord",
		Amount:        amount("20.00"),
	})
	suite.Require().NoError(err)
	suite.False(receipt.IsInternalTransfer())
	suite.Equal(externalTestIBAN, receipt.RecipientIBAN)
	suite.Equal("Landlord", receipt.RecipientName)
	suite.Equal("30.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.assertReconciled(user.UserID, acc.AccountID)
}

func (suite *LedgerServiceTestSuite) TestTransferRejections() {
	user, acc := suite.register("heidi")
	suite.deposit(user.UserID, acc.AccountID, "50.00")

	tests := []struct {
		name    string
		req     dto.TransferRequest
		wantErr error
	}{
		{
			name:    "self transfer",
			req:     dto.TransferRequest{FromAccountID: acc.AccountID, RecipientIBAN: acc.IBAN, Amount: amount("1.00")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "bad checksum",
			req:     dto.TransferRequest{FromAccountID: acc.AccountID, RecipientIBAN: "DE00370400440532013000", Amount: amount("1.00")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "insufficient funds",
			req:     dto.TransferRequest{FromAccountID: acc.AccountID, RecipientIBAN: externalTestIBAN, Amount: amount("100.01")},
			wantErr: apperrors.ErrInsufficientFunds,
		},
		{
			name:    "unknown source",
			req:     dto.TransferRequest{FromAccountID: 999, RecipientIBAN: externalTestIBAN, Amount: amount("1.00")},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.ledger.Transfer(suite.ctx, user.UserID, tt.req)
			suite.ErrorIs(err, tt.wantErr)
		})
	}
	suite.Equal("50.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.Equal(1, suite.historyCount(user.UserID, acc.AccountID))
}

func (suite *LedgerServiceTestSuite) TestTransferCurrencyMismatchRollsBack() {
	user, acc := suite.register("ivan")
	other, _ := suite.register("judy")
	suite.deposit(user.UserID, acc.AccountID, "50.00")

	generator := banking.NewGenerator(suite.bank.CountryCode, suite.bank.BankCode, suite.bank.BranchCode)
	number, err := generator.AccountNumber()
	suite.Require().NoError(err)
	iban, err := generator.IBAN(number)
	suite.Require().NoError(err)
	usd := domain.Account{
		AccountNumber: number,
		IBAN:          iban,
		UserID:        other.UserID,
		AccountType:   domain.AccountTypeSavings,
		Currency:      "USD",
		Status:        domain.AccountStatusActive,
	}
	suite.Require().NoError(suite.repos.TxManager.WithinTx(suite.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Accounts().CreateAccount(ctx, &usd)
	}))

	_, err = suite.ledger.Transfer(suite.ctx, user.UserID, dto.TransferRequest{
		FromAccountID: acc.AccountID,
		RecipientIBAN: usd.IBAN,
		Amount:        amount("10.00"),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("50.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.Equal(1, suite.historyCount(user.UserID, acc.AccountID))
}

func (suite *LedgerServiceTestSuite) TestPayment() {
	user, acc := suite.register("mallory")
	suite.deposit(user.UserID, acc.AccountID, "80.00")

	receipt, err := suite.ledger.Pay(suite.ctx, user.UserID, dto.PaymentRequest{
		AccountID: acc.AccountID,
		Amount:    amount("12.34"),
		Merchant:  "Corner Shop",
		Category:  "groceries",
	})
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionPayment, receipt.TransactionType)
	suite.Equal("groceries", receipt.Category)
	suite.Equal("67.66", receipt.NewBalance.StringFixed(2))

	_, err = suite.ledger.Pay(suite.ctx, user.UserID, dto.PaymentRequest{
		AccountID: acc.AccountID,
		Amount:    amount("1.00"),
		Merchant:  "Casino",
		Category:  "gambling",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("67.66", suite.balanceOf(user.UserID, acc.AccountID))
}

func (suite *LedgerServiceTestSuite) TestPaymentInsufficientFunds() {
	user, acc := suite.register("quentin")
	suite.deposit(user.UserID, acc.AccountID, "80.00")

	_, err := suite.ledger.Pay(suite.ctx, user.UserID, dto.PaymentRequest{
		AccountID: acc.AccountID,
		Amount:    amount("130.01"),
		Merchant:  "Furniture Store",
		Category:  "shopping",
	})
	suite.Require().Error(err)

	var fundsErr *apperrors.InsufficientFundsError
	suite.Require().True(errors.As(err, &fundsErr))
	suite.Equal("80.00", fundsErr.Balance.StringFixed(2))
	suite.Equal("130.01", fundsErr.Requested.StringFixed(2))
	suite.Equal("130.00", fundsErr.Available.StringFixed(2))

	suite.Equal("80.00", suite.balanceOf(user.UserID, acc.AccountID))
	suite.Equal(1, suite.historyCount(user.UserID, acc.AccountID))
	suite.assertReconciled(user.UserID, acc.AccountID)
}

func (suite *LedgerServiceTestSuite) TestPaymentCategoryNotEnforced() {
	suite.bank.EnforcePaymentCategories = false
	generator := banking.NewGenerator(suite.bank.CountryCode, suite.bank.BankCode, suite.bank.BranchCode)
	ledger := services.NewLedgerService(suite.repos, generator, suite.bank)

	user, acc := suite.register("niaj")
	suite.deposit(user.UserID, acc.AccountID, "10.00")
	receipt, err := ledger.Pay(suite.ctx, user.UserID, dto.PaymentRequest{
		AccountID: acc.AccountID, Amount: amount("1.00"), Merchant: "Arcade", Category: "games",
	})
	suite.Require().NoError(err)
	suite.Equal("games", receipt.Category)
}

func (suite *LedgerServiceTestSuite) TestAmountValidation() {
	user, acc := suite.register("olivia")

	for _, value := range []string{"0", "-5.00", "1.001", "1000000.01"} {
		suite.Run(value, func() {
			_, err := suite.ledger.Deposit(suite.ctx, user.UserID, dto.DepositRequest{AccountID: acc.AccountID, Amount: amount(value)})
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.Equal(0, suite.historyCount(user.UserID, acc.AccountID))
}

func (suite *LedgerServiceTestSuite) TestClosedAccountRejectsMovements() {
	user, acc := suite.register("peggy")
	suite.Require().NoError(suite.account.CloseAccount(suite.ctx, acc.AccountID, user.UserID))

	_, err := suite.ledger.Deposit(suite.ctx, user.UserID, dto.DepositRequest{AccountID: acc.AccountID, Amount: amount("5.00")})
	suite.ErrorIs(err, apperrors.ErrInactive)
}

func (suite *LedgerServiceTestSuite) TestForeignAccountIsNotFound() {
	_, acc := suite.register("rupert")
	intruder, _ := suite.register("sybil")

	_, err := suite.ledger.Deposit(suite.ctx, intruder.UserID, dto.DepositRequest{AccountID: acc.AccountID, Amount: amount("5.00")})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.ledger.ListTransactions(suite.ctx, intruder.UserID, dto.ListTransactionsParams{AccountID: &acc.AccountID, Page: 1, PerPage: 10})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestUnknownReference() {
	user, _ := suite.register("trent")
	_, err := suite.ledger.GetTransactionsByReference(suite.ctx, user.UserID, "TRX00000000000000AAAAAA")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestPagination() {
	user, acc := suite.register("victor")
	for i := 0; i < 5; i++ {
		suite.deposit(user.UserID, acc.AccountID, "1.00")
	}

	page, err := suite.ledger.ListTransactions(suite.ctx, user.UserID, dto.ListTransactionsParams{Page: 3, PerPage: 2})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, 1)
	suite.Equal(dto.Pagination{Page: 3, PerPage: 2, Total: 5, Pages: 3}, page.Pagination)

	_, err = suite.ledger.ListTransactions(suite.ctx, user.UserID, dto.ListTransactionsParams{Page: math.MaxInt/100 + 2, PerPage: 100})
	suite.ErrorIs(err, apperrors.ErrValidation)

	last, err := suite.ledger.ListTransactions(suite.ctx, user.UserID, dto.ListTransactionsParams{Page: domain.MaxPageNumber, PerPage: 100})
	suite.Require().NoError(err)
	suite.Empty(last.Transactions)
	suite.Equal(5, last.Pagination.Total)
}

// --- Failure paths with a mocked transaction manager ---

func newMockedLedger(txm portsrepo.TransactionManager) portssvc.LedgerSvcFacade {
	store := memory.NewStore()
	repos := store.RepositoryProvider()
	repos.TxManager = txm
	bank := config.DefaultBankConfig()
	return services.NewLedgerService(repos, banking.NewGenerator(bank.CountryCode, bank.BankCode, bank.BranchCode), bank)
}

func TestLedgerService_StoreFailureIsPropagated(t *testing.T) {
	txm := new(MockTransactionManager)
	storeErr := apperrors.NewStoreError("connection refused", errors.New("dial tcp: refused"))
	txm.On("WithinTx", mock.Anything, mock.Anything).Return(storeErr).Once()

	ledger := newMockedLedger(txm)
	_, err := ledger.Deposit(context.Background(), 1, dto.DepositRequest{AccountID: 1, Amount: amount("10.00")})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreFailure)
	txm.AssertExpectations(t)
}

func TestLedgerService_IdentifierCollisionRetriesThenConflicts(t *testing.T) {
	txm := new(MockTransactionManager)
	txm.On("WithinTx", mock.Anything, mock.Anything).Return(apperrors.ErrIdentifierCollision)

	ledger := newMockedLedger(txm)
	_, err := ledger.Withdraw(context.Background(), 1, dto.WithdrawalRequest{AccountID: 1, Amount: amount("10.00")})

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.ErrorIs(t, err, apperrors.ErrIdentifierCollision)
	txm.AssertNumberOfCalls(t, "WithinTx", 3)
}

func TestUserService_RegisterCollisionIsNotAnAccountClash(t *testing.T) {
	txm := new(MockTransactionManager)
	txm.On("WithinTx", mock.Anything, mock.Anything).Return(apperrors.ErrIdentifierCollision)

	repos := memory.NewStore().RepositoryProvider()
	repos.TxManager = txm
	bank := config.DefaultBankConfig()
	users := services.NewUserService(repos, banking.NewGenerator(bank.CountryCode, bank.BankCode, bank.BranchCode), bank)

	_, _, err := users.Register(context.Background(), dto.RegisterRequest{
		Username:  "walter",
		Email:     "walter@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Walter",
		LastName:  "White",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.ErrorIs(t, err, apperrors.ErrIdentifierCollision)
	assert.NotContains(t, err.Error(), "already registered")
	txm.AssertNumberOfCalls(t, "WithinTx", 3)
}

func TestAccountService_CollisionRecoversOnRetry(t *testing.T) {
	txm := new(MockTransactionManager)
	txm.On("WithinTx", mock.Anything, mock.Anything).Return(apperrors.ErrIdentifierCollision).Once()
	txm.On("WithinTx", mock.Anything, mock.Anything).Return(nil).Once()

	repos := memory.NewStore().RepositoryProvider()
	repos.TxManager = txm
	accounts := services.NewAccountService(repos)

	err := accounts.CloseAccount(context.Background(), 1, 1)
	assert.NoError(t, err)
	txm.AssertNumberOfCalls(t, "WithinTx", 2)
}
