package banking

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/SscSPs/banking_backoffice/internal/utils"
)

const (
	AccountNumberLength = 11
	referencePrefix     = "TRX"
	referenceSuffixLen  = 6
	referenceAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceTimeLayout = "20060102150405"
)

// Generator produces account numbers, IBANs and transaction references.
// Uniqueness is not checked here; the store's unique constraints catch collisions.
type Generator struct {
	CountryCode string
	BankCode    string
	BranchCode  string

	random io.Reader
	now    func() time.Time
}

// NewGenerator returns a Generator backed by crypto/rand and the UTC wall clock.
func NewGenerator(countryCode, bankCode, branchCode string) *Generator {
	return &Generator{
		CountryCode: countryCode,
		BankCode:    bankCode,
		BranchCode:  branchCode,
		random:      rand.Reader,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// AccountNumber returns 11 random decimal digits.
func (g *Generator) AccountNumber() (string, error) {
	return g.randomString("0123456789", AccountNumberLength)
}

// IBAN derives the IBAN for accountNumber. French IBANs carry the RIB key after the account number.
func (g *Generator) IBAN(accountNumber string) (string, error) {
	bban := g.BankCode + g.BranchCode + accountNumber
	if g.CountryCode == "FR" || g.CountryCode == "MC" {
		key, err := RIBKey(g.BankCode, g.BranchCode, accountNumber)
		if err != nil {
			return "", err
		}
		bban += key
	}
	return BuildIBAN(g.CountryCode, bban)
}

// TransactionReference returns TRX + UTC timestamp + 6 random [A-Z0-9] characters.
func (g *Generator) TransactionReference() (string, error) {
	suffix, err := g.randomString(referenceAlphabet, referenceSuffixLen)
	if err != nil {
		return "", err
	}
	return referencePrefix + g.now().Format(referenceTimeLayout) + suffix, nil
}

func (g *Generator) randomString(alphabet string, n int) (string, error) {
	return utils.RandomFromAlphabet(g.random, alphabet, n)
}
