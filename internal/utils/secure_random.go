package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// RandomFromAlphabet draws n characters uniformly from alphabet using r.
// A nil reader means crypto/rand.
func RandomFromAlphabet(r io.Reader, alphabet string, n int) (string, error) {
	if alphabet == "" || n <= 0 {
		return "", errors.New("alphabet and length must be non-empty")
	}
	if r == nil {
		r = rand.Reader
	}
	size := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(r, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewTokenID returns a 128-bit hex identifier for the jti claim.
func NewTokenID() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
