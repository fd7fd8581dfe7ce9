package accounting_test

import (
	"testing"

	"github.com/SscSPs/banking_backoffice/internal/apperrors"
	"github.com/SscSPs/banking_backoffice/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	max := decimal.RequireFromString("1000000")
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "one cent", amount: "0.01"},
		{name: "at maximum", amount: "1000000.00"},
		{name: "trailing zeros beyond scale", amount: "12.500"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5.00", wantErr: true},
		{name: "sub-cent", amount: "0.001", wantErr: true},
		{name: "above maximum", amount: "1000000.01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.ValidateAmount(decimal.RequireFromString(tt.amount), max)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAmount_NoCeiling(t *testing.T) {
	assert.NoError(t, accounting.ValidateAmount(decimal.RequireFromString("5000000"), decimal.Zero))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-40.00", accounting.FormatAmount(decimal.RequireFromString("-40")))
	assert.Equal(t, "0.10", accounting.FormatAmount(decimal.RequireFromString("0.1")))
}
