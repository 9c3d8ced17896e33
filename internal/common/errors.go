// Package common defines shared sentinel errors used across client and
// server layers of KeepInTouch. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors. ErrNotFound is deliberately also returned
	// for rows that exist but belong to another user, so callers cannot
	// probe for existence.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors (empty required field, malformed recurrence).
	// Rejected before any write.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")

	// Push delivery configuration.
	ErrVAPIDNotConfigured = errors.New("vapid keys not configured")
)
