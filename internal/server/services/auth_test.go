package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededAuth(t *testing.T, users ...models.User) (*AuthService, *auth.TokenService) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	tokens := newTokenService(t)
	return NewAuthService(newSessions(db, &fakeRepoManager{u: newFakeUsersRepo(users...)}), newHasher(), tokens, nopLog), tokens
}

func digest(t *testing.T, plain string) string {
	t.Helper()
	d, err := newHasher().Hash(plain)
	require.NoError(t, err)
	return d
}

func TestIssueTokens_Success(t *testing.T) {
	s, tokens := seededAuth(t, models.User{ID: 7, Login: "test", HashedPassword: digest(t, "Secret1!")})

	pair, err := s.IssueTokens(context.Background(), "test", "Secret1!")
	require.NoError(t, err)

	ac, err := tokens.VerifyToken(pair.AccessToken.Token, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ac.UserID)

	rc, err := tokens.VerifyToken(pair.RefreshToken.Token, auth.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rc.UserID)
	assert.True(t, pair.AccessToken.ExpiredAt.Before(pair.RefreshToken.ExpiredAt))
}

func TestIssueTokens_PicksFirstMatchingUser(t *testing.T) {
	s, tokens := seededAuth(t,
		models.User{ID: 1, Login: "test", HashedPassword: digest(t, "other")},
		models.User{ID: 2, Login: "test", HashedPassword: digest(t, "Secret1!")},
		models.User{ID: 3, Login: "test", HashedPassword: digest(t, "Secret1!")},
	)

	pair, err := s.IssueTokens(context.Background(), "test", "Secret1!")
	require.NoError(t, err)

	c, err := tokens.VerifyToken(pair.AccessToken.Token, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.UserID)
}

func TestIssueTokens_WrongPassword(t *testing.T) {
	s, _ := seededAuth(t, models.User{ID: 1, Login: "test", HashedPassword: digest(t, "Secret1!")})

	_, err := s.IssueTokens(context.Background(), "test", "wrong-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestIssueTokens_UnknownLogin(t *testing.T) {
	s, _ := seededAuth(t)

	_, err := s.IssueTokens(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestIssueTokens_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeUsersRepo()
	repo.findErr = errBoom{}
	s := NewAuthService(newSessions(db, &fakeRepoManager{u: repo}), newHasher(), newTokenService(t), nopLog)

	_, err := s.IssueTokens(context.Background(), "test", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
	assert.Regexp(t, `error searching user: .*boom`, err.Error())
}

func TestRefresh(t *testing.T) {
	s, tokens := seededAuth(t)

	_, refresh, err := tokens.GenerateTokens(5, nil)
	require.NoError(t, err)

	got, err := s.Refresh(context.Background(), refresh.Token)
	require.NoError(t, err)
	c, err := tokens.VerifyToken(got.Token, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.UserID)

	_, err = s.Refresh(context.Background(), "invalid_token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefresh_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	issuedAt := time.Now().Add(-8 * time.Hour)
	old, err := auth.NewTokenService("k", "HS256", 15*time.Minute, 7*time.Hour, auth.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	refresh, err := old.GenerateRefreshToken(1)
	require.NoError(t, err)

	s := NewAuthService(newSessions(db, &fakeRepoManager{u: newFakeUsersRepo()}), newHasher(), newTokenService(t), nopLog)

	_, err = s.Refresh(context.Background(), refresh.Token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}
