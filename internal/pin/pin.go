// Package pin hashes and verifies the short numeric secrets that authorize
// money movement. Identity (who is calling) is established upstream by the
// auth gateway; the PIN is the per-transfer authorization factor.
package pin

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 6

// ErrMismatch occurs when the presented PIN does not match the stored hash.
var ErrMismatch = errors.New("pin mismatch")

// Hash derives a bcrypt hash for storage alongside the account.
func Hash(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), hashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares a presented PIN against a stored hash.
func Verify(hash, pin string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
