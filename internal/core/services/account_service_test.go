package services_test

import (
	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/dto"
)

func (suite *LedgerServiceTestSuite) TestListAccountsAndSummary() {
	user, acc := suite.register("walter")
	other, otherAcc := suite.register("xavier")
	suite.deposit(user.UserID, acc.AccountID, "300.00")
	suite.deposit(other.UserID, otherAcc.AccountID, "10.00")

	_, err := suite.ledger.Pay(suite.ctx, user.UserID, dto.PaymentRequest{AccountID: acc.AccountID, Amount: amount("45.50"), Merchant: "Rail", Category: "transport"})
	suite.Require().NoError(err)
	_, err = suite.ledger.Transfer(suite.ctx, other.UserID, dto.TransferRequest{FromAccountID: otherAcc.AccountID, RecipientIBAN: acc.IBAN, Amount: amount("5.00")})
	suite.Require().NoError(err)

	accounts, err := suite.account.ListAccounts(suite.ctx, user.UserID)
	suite.Require().NoError(err)
	suite.Len(accounts, 1)

	summary, err := suite.account.GetSummary(suite.ctx, user.UserID)
	suite.Require().NoError(err)
	suite.Equal(1, summary.TotalAccounts)
	suite.Equal("259.50", summary.TotalBalance.StringFixed(2))
	suite.Equal("259.50", summary.CheckingBalance.StringFixed(2))
	suite.Equal("0.00", summary.SavingsBalance.StringFixed(2))
	suite.Equal("305.00", summary.MonthlyIncome.StringFixed(2))
	suite.Equal("45.50", summary.MonthlyExpenses.StringFixed(2))
	suite.Equal("259.50", summary.MonthlySavings().StringFixed(2))
}

func (suite *LedgerServiceTestSuite) TestCloseAccount() {
	user, acc := suite.register("yvonne")
	suite.deposit(user.UserID, acc.AccountID, "1.00")

	err := suite.account.CloseAccount(suite.ctx, acc.AccountID, user.UserID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.ledger.Withdraw(suite.ctx, user.UserID, dto.WithdrawalRequest{AccountID: acc.AccountID, Amount: amount("1.00")})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.account.CloseAccount(suite.ctx, acc.AccountID, user.UserID))

	accounts, err := suite.account.ListAccounts(suite.ctx, user.UserID)
	suite.Require().NoError(err)
	suite.Empty(accounts)

	err = suite.account.CloseAccount(suite.ctx, acc.AccountID, user.UserID)
	suite.ErrorIs(err, apperrors.ErrInactive)

	// History survives the close.
	rec, err := suite.account.ReconcileAccount(suite.ctx, acc.AccountID, user.UserID)
	suite.Require().NoError(err)
	suite.Equal(2, rec.TransactionCount)
	suite.True(rec.Balanced())
}
