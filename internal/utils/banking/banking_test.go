package banking_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/utils/banking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIBAN(t *testing.T) {
	tests := []struct {
		name    string
		iban    string
		wantErr error
	}{
		{name: "valid french", iban: "FR1420041010050500013M02606"},
		{name: "valid german with spaces", iban: "DE89 3704 0044 0532 0130 00"},
		{name: "valid british lower case", iban: "gb29nwbk60161331926819"},
		{name: "bad checksum", iban: "FR1420041010050500013M02607", wantErr: banking.ErrInvalidIBANChecksum},
		{name: "too short", iban: "FR14", wantErr: banking.ErrInvalidIBAN},
		{name: "wrong country length", iban: "DE8937040044053201300", wantErr: banking.ErrInvalidIBAN},
		{name: "numeric country", iban: "121420041010050500013M02606", wantErr: banking.ErrInvalidIBAN},
		{name: "symbol in bban", iban: "FR14200410100505000-3M02606", wantErr: banking.ErrInvalidIBAN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := banking.ValidateIBAN(tt.iban)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRIBKey(t *testing.T) {
	key, err := banking.RIBKey("30002", "00550", "00001234567")
	require.NoError(t, err)
	assert.Equal(t, "83", key)

	_, err = banking.RIBKey("3000A", "00550", "00001234567")
	assert.ErrorIs(t, err, banking.ErrInvalidIBAN)
}

func TestGenerator_AccountNumberAndIBAN(t *testing.T) {
	g := banking.NewGenerator("FR", "12345", "90000")

	for i := 0; i < 50; i++ {
		number, err := g.AccountNumber()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{11}$`, number)

		iban, err := g.IBAN(number)
		require.NoError(t, err)
		assert.Len(t, iban, 27)
		assert.Equal(t, "FR", iban[:2])
		assert.Equal(t, "1234590000"+number, iban[4:25])
		assert.NoError(t, banking.ValidateIBAN(iban))
	}
}

func TestGenerator_IBANForOtherCountry(t *testing.T) {
	g := banking.NewGenerator("DE", "37040044", "")
	iban, err := g.IBAN("0532013000")
	require.NoError(t, err)
	assert.Equal(t, "DE89370400440532013000", iban)
}

func TestGenerator_TransactionReference(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	g := banking.NewGenerator("FR", "12345", "90000").WithClock(func() time.Time { return fixed })

	pattern := regexp.MustCompile(`^TRX20240309140507[A-Z0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref, err := g.TransactionReference()
		require.NoError(t, err)
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 90)
}
