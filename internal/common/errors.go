// Package common defines shared constants and sentinel errors used across
// the user directory service. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")

	// Lifecycle errors.
	ErrUserDeleted = errors.New("user has been deleted")

	// Authentication errors. ErrInvalidCredentials is deliberately opaque:
	// it covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors (invalid, tampered or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
