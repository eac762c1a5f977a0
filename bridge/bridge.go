// Package bridge talks to the optional desktop shell that hosts the client.
// When the shell is present it owns secure token storage and native
// notifications; when it is absent callers fall back to their own storage.
package bridge

import "context"

// Bridge is the privileged API surface exposed by a desktop shell.
// Available is probed before every use; a nil Bridge is treated as absent.
type Bridge interface {
	Available() bool
	GetToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
	Notify(ctx context.Context, title, body string) error
}

// IsAvailable is the single capability check shared by all bridge consumers.
func IsAvailable(b Bridge) bool {
	return b != nil && b.Available()
}
