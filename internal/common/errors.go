// Package common defines shared constants and sentinel errors used across
// PawPath components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Input errors (malformed or missing fields, no side effects).
	ErrorValidation = errors.New("validation error")

	// Authentication / authorization errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Unexpected backend failures. Rendered to callers as an opaque message;
	// the detailed cause is only logged server-side.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
