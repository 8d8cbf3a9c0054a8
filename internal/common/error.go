// Package common defines shared constants and sentinel errors used across
// the account service layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Unit-of-work errors.
	ErrorSessionActive = errors.New("session already active")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation  = errors.New("validation error")
	ErrorEmptyUpdate = errors.New("empty update")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenTypeMismatch is reported when a well-signed token carries an
	// unexpected type tag. It matches ErrInvalidToken.
	ErrTokenTypeMismatch = fmt.Errorf("%w: unexpected token type", ErrInvalidToken)

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
