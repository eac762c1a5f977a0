// Package token persists the opaque bearer token the backend issues at login.
// The token is never parsed or inspected here, only stored and handed back.
package token

import "context"

// DefaultKey is the fixed name the token is stored under
const DefaultKey = "auth_token"

// Store persists a single opaque token. Implementations never fail loudly:
// read problems mean "no token", write problems are logged.
type Store interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string)
	Delete(ctx context.Context)
}
