package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/session"
)

type AuthService struct {
	sessions Sessions
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      logging.Logger
}

func NewAuthService(sessions Sessions, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger) *AuthService {
	return &AuthService{
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		log:      log.With("service", "auth"),
	}
}

// IssueTokens checks login and password and returns a fresh token pair for
// the first matching user, or common.ErrorUnauthorized.
func (s *AuthService) IssueTokens(ctx context.Context, login, password string) (*TokenPair, error) {
	var candidates []*models.User

	err := s.sessions.New().WithoutCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		var err error
		candidates, err = sc.Users().FindByLogin(ctx, login)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	var user *models.User
	for _, c := range candidates {
		if s.hasher.Verify(password, c.HashedPassword) {
			user = c
			break
		}
	}
	if user == nil {
		s.log.Debug(ctx, "credentials rejected")
		return nil, common.ErrorUnauthorized
	}

	access, refresh, err := s.tokens.GenerateTokens(user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	s.log.Info(ctx, "tokens issued", "user_id", user.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. Invalid tokens
// yield common.ErrInvalidToken, expired ones common.ErrTokenExpired.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (*models.Token, error) {
	token, err := s.tokens.RefreshAccessToken(refresh, nil)
	if err != nil {
		s.log.Debug(ctx, "refresh rejected", "error", err)
		return nil, err
	}
	return token, nil
}
