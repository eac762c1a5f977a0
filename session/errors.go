package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/depot-client/api"
	depoterrors "github.com/jrsteele09/depot-client/internal/errors"
)

var (
	ErrLoginInProgress  = depoterrors.ErrLoginInProgress
	ErrNotAuthenticated = depoterrors.ErrNotAuthenticated
	ErrTokenMissing     = depoterrors.ErrTokenMissing
	ErrInvalidProfile   = errors.New("profile response has no user id")
)

// Kind classifies a failure into something the UI can explain without
// seeing HTTP status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindSessionExpired
	KindServer
	KindNetwork
	KindTokenMissing
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindSessionExpired:
		return "session_expired"
	case KindServer:
		return "server_error"
	case KindNetwork:
		return "network_error"
	case KindTokenMissing:
		return "token_missing"
	default:
		return "unknown"
	}
}

// Message is the user facing text for the kind
func (k Kind) Message() string {
	switch k {
	case KindInvalidCredentials:
		return "Incorrect email or password."
	case KindSessionExpired:
		return "Your session has expired. Please log in again."
	case KindServer:
		return "The server ran into a problem. Please try again later."
	case KindNetwork:
		return "Unable to reach the server. Please check your connection."
	case KindTokenMissing:
		return "The server did not return a session. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

// Error is the normalized error returned by the controller
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[session %s] %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("[session %s] %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, KindUnknown when it has none
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return classifyKind("", err)
}

// UserMessage turns any error into text safe to show the end user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginInProgress):
		return "A login is already in progress."
	case errors.Is(err, ErrNotAuthenticated):
		return "You are not logged in."
	}
	return KindOf(err).Message()
}

func classify(op string, err error) *Error {
	return &Error{Op: op, Kind: classifyKind(op, err), Err: err}
}

func classifyKind(op string, err error) Kind {
	switch code := api.StatusCode(err); {
	case errors.Is(err, ErrTokenMissing):
		return KindTokenMissing
	case api.IsNoResponse(err):
		return KindNetwork
	case code == http.StatusUnauthorized && op != opLogin:
		return KindSessionExpired
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindInvalidCredentials
	case code >= http.StatusInternalServerError:
		return KindServer
	}
	return KindUnknown
}
