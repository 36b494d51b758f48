package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Circle client
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("refresh token missing")

	// Transport errors
	ErrNetwork = errors.New("unable to reach the server")

	// Telegram errors
	ErrTelegramUnavailable = errors.New("telegram data is unavailable or malformed")

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Configuration errors
	ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set outside development")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
