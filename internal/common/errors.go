// Package common defines shared constants and sentinel errors used across
// the bot and the dashboard. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (bad envelope, bad config token).
	ErrorValidation = errors.New("validation error")

	// Storage backend selection.
	ErrorUnsupportedDriver = errors.New("unsupported database driver")
)
