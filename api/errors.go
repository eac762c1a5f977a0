package api

import (
	"errors"
	"fmt"
	"net/http"

	depoterrors "github.com/jrsteele09/depot-client/internal/errors"
)

var (
	// ErrNoResponse marks calls that never got an HTTP response: network down, DNS, timeout
	ErrNoResponse = depoterrors.ErrNoResponse
	// ErrUnauthorized matches any StatusError carrying a 401
	ErrUnauthorized = depoterrors.ErrUnauthorized
	// ErrForeignOrigin is returned for absolute urls outside the backend origin
	ErrForeignOrigin = errors.New("url is outside the backend origin")
)

// StatusError is returned for every non-2xx response
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's "message" field when it sent one
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[api %s %s] %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("[api %s %s] %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNoResponse reports whether err means the server was never reached
func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}
