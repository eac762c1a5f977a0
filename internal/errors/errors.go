package errors

import (
	"errors"
	"fmt"
)

// Common error types for the depot client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoginInProgress  = errors.New("login already in progress")
	ErrTokenMissing     = errors.New("token missing from login response")

	// Transport errors
	ErrNoResponse   = errors.New("no response from server")
	ErrUnauthorized = errors.New("unauthorized")

	// Storage errors
	ErrNotFound          = errors.New("not found")
	ErrBridgeUnavailable = errors.New("host bridge unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
