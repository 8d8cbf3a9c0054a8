// Package auth issues and verifies JWTs and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tags a token as access or refresh.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims is the verified token payload.
type Claims struct {
	UserID int64     `json:"user_id"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService signs and verifies stateless access and refresh tokens.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a TokenService for an HMAC algorithm
// (HS256, HS384 or HS512).
func NewTokenService(secret, algorithm string, accessTTL, refreshTTL time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	s := &TokenService{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GenerateAccessToken mints an access token for userID. Extra claims are
// embedded but cannot replace user_id, type, iat, exp or jti.
func (s *TokenService) GenerateAccessToken(userID int64, extra map[string]any) (*models.Token, error) {
	return s.generate(userID, AccessToken, s.accessTTL, extra)
}

// GenerateRefreshToken mints a refresh token for userID.
func (s *TokenService) GenerateRefreshToken(userID int64) (*models.Token, error) {
	return s.generate(userID, RefreshToken, s.refreshTTL, nil)
}

// GenerateTokens mints an access and a refresh token. Each expiry is
// computed from its own issue time and TTL.
func (s *TokenService) GenerateTokens(userID int64, extra map[string]any) (access, refresh *models.Token, err error) {
	access, err = s.GenerateAccessToken(userID, extra)
	if err != nil {
		return nil, nil, err
	}
	refresh, err = s.GenerateRefreshToken(userID)
	if err != nil {
		return nil, nil, err
	}
	return access, refresh, nil
}

func (s *TokenService) generate(userID int64, typ TokenType, ttl time.Duration, extra map[string]any) (*models.Token, error) {
	now := s.now()
	exp := jwt.NewNumericDate(now.Add(ttl))

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["user_id"] = userID
	claims["type"] = string(typ)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = exp
	claims["jti"] = uuid.NewString()

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.Token{Token: signed, ExpiredAt: exp.Time}, nil
}

// VerifyToken checks the signature, expiry and type tag of raw.
//
// Errors: common.ErrTokenExpired when exp has passed, common.ErrTokenTypeMismatch
// when the type differs from expected, and common.ErrInvalidToken (wrapped)
// for anything else.
func (s *TokenService) VerifyToken(raw string, expected TokenType) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Type != expected {
		return nil, common.ErrTokenTypeMismatch
	}

	return claims, nil
}

// RefreshAccessToken verifies a refresh token and mints a new access token
// for its user. The refresh token itself stays valid.
func (s *TokenService) RefreshAccessToken(refresh string, extra map[string]any) (*models.Token, error) {
	claims, err := s.VerifyToken(refresh, RefreshToken)
	if err != nil {
		return nil, err
	}
	return s.GenerateAccessToken(claims.UserID, extra)
}
