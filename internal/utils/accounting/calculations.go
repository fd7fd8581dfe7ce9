package accounting

import (
	"fmt"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by every amount and balance.
const MoneyScale = 2

// ValidateAmount checks that a requested movement is strictly positive, carries no more
// than two decimals and does not exceed max. A zero max disables the ceiling.
func ValidateAmount(amount, max decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount.String(), MoneyScale)
	}
	if max.IsPositive() && amount.GreaterThan(max) {
		return fmt.Errorf("%w: amount exceeds the maximum of %s", apperrors.ErrValidation, max.StringFixed(MoneyScale))
	}
	return nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyScale)
}
