package banking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidIBAN         = errors.New("invalid IBAN")
	ErrInvalidIBANChecksum = errors.New("invalid IBAN checksum")
)

// ibanLengths holds the fixed IBAN length of the countries this bank routes to.
var ibanLengths = map[string]int{
	"AT": 20, "BE": 16, "CH": 21, "DE": 22, "ES": 24, "FR": 27, "GB": 22,
	"IE": 22, "IT": 27, "LU": 20, "MC": 27, "NL": 18, "PT": 25,
}

const (
	minIBANLength = 15
	maxIBANLength = 34
)

// NormalizeIBAN strips spaces and upper-cases the input.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

// ValidateIBAN checks the structure, the country length and the ISO 13616 mod-97 checksum.
func ValidateIBAN(iban string) error {
	iban = NormalizeIBAN(iban)
	if len(iban) < minIBANLength || len(iban) > maxIBANLength {
		return fmt.Errorf("%w: length %d out of range", ErrInvalidIBAN, len(iban))
	}
	if !isUpperLetter(iban[0]) || !isUpperLetter(iban[1]) {
		return fmt.Errorf("%w: country code must be two letters", ErrInvalidIBAN)
	}
	if !isDigit(iban[2]) || !isDigit(iban[3]) {
		return fmt.Errorf("%w: check digits must be numeric", ErrInvalidIBAN)
	}
	for i := 4; i < len(iban); i++ {
		if !isDigit(iban[i]) && !isUpperLetter(iban[i]) {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidIBAN, iban[i])
		}
	}
	if want, ok := ibanLengths[iban[:2]]; ok && len(iban) != want {
		return fmt.Errorf("%w: %s IBANs have %d characters, got %d", ErrInvalidIBAN, iban[:2], want, len(iban))
	}

	// Move the first four characters to the end and the remainder must be 1.
	if mod97(iban[4:]+iban[:4]) != 1 {
		return ErrInvalidIBANChecksum
	}
	return nil
}

// BuildIBAN assembles an IBAN from a country code and a BBAN, computing the check digits.
func BuildIBAN(countryCode, bban string) (string, error) {
	countryCode = strings.ToUpper(countryCode)
	if len(countryCode) != 2 || !isUpperLetter(countryCode[0]) || !isUpperLetter(countryCode[1]) {
		return "", fmt.Errorf("%w: bad country code %q", ErrInvalidIBAN, countryCode)
	}
	check := 98 - mod97(strings.ToUpper(bban)+countryCode+"00")
	iban := fmt.Sprintf("%s%02d%s", countryCode, check, bban)
	if err := ValidateIBAN(iban); err != nil {
		return "", err
	}
	return iban, nil
}

// RIBKey computes the French two-digit RIB key for numeric bank, branch and account codes.
func RIBKey(bankCode, branchCode, accountNumber string) (string, error) {
	bank, err := digitsValue(bankCode)
	if err != nil {
		return "", err
	}
	branch, err := digitsValue(branchCode)
	if err != nil {
		return "", err
	}
	account, err := digitsValue(accountNumber)
	if err != nil {
		return "", err
	}
	key := 97 - ((89*bank + 15*branch + 3*account) % 97)
	return fmt.Sprintf("%02d", key), nil
}

// mod97 transliterates letters (A=10 .. Z=35) and reduces the resulting number modulo 97.
func mod97(s string) int {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			rem = (rem*10 + int(c-'0')) % 97
		case isUpperLetter(c):
			v := int(c-'A') + 10
			rem = (rem*100 + v) % 97
		}
	}
	return rem
}

func digitsValue(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty numeric field", ErrInvalidIBAN)
	}
	var v int64
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidIBAN, s)
		}
		v = v*10 + int64(s[i]-'0')
	}
	return v, nil
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isUpperLetter(c byte) bool { return c >= 'A' && c <= 'Z' }
