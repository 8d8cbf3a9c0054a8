package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher produces salted bcrypt digests.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost; zero means
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the digest of plain. Passwords over 72 bytes are rejected
// with common.ErrorValidation.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", common.ErrorValidation)
		}
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest.
func (h *BcryptHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
