// Package services implements the account use cases on top of the session,
// repository and auth packages.
package services

import (
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/session"
)

// Sessions opens a fresh unit of work per call.
type Sessions interface {
	New() session.UnitOfWork
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer mints and refreshes token pairs.
type TokenIssuer interface {
	GenerateTokens(userID int64, extra map[string]any) (access, refresh *models.Token, err error)
	RefreshAccessToken(refresh string, extra map[string]any) (*models.Token, error)
}

// TokenPair is an access token with its refresh token.
type TokenPair struct {
	AccessToken  *models.Token
	RefreshToken *models.Token
}
