// Password hashing.
//
// WHY BCRYPT?
// bcrypt is deliberately slow and salts every hash, so two users with the
// same password end up with different stored strings. The salt and cost are
// embedded in the output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// so the stored string is all Verify needs.

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/pokedex-api/internal/apperror"
)

// DefaultCost is the bcrypt work factor used in production.
//
// COST TUNING RULE OF THUMB:
// Pick the cost so hashing takes ~200–300ms on production hardware.
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests; cost 4 keeps the suite fast without changing the logic.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// A cost outside bcrypt's accepted range falls back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's minimum
// cost. Do NOT use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// Returns a validation error if the plaintext is longer than 72 bytes.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches a stored bcrypt hash.
//
// A malformed hash is a mismatch, not an error: callers only ever need to
// know whether the credential is good.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares in constant time, and its cost is
// dominated by the key derivation, which runs whether or not the hash matches.
func (p *PasswordService) Verify(plaintext, hash string) bool {
	// ErrMismatchedHashAndPassword, ErrHashTooShort, a bad version or cost:
	// all of them mean "no".
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
