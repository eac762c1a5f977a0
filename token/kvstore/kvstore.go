// Package kvstore provides the key/value stores the token manager falls back
// to when no host bridge is present: a durable store that survives restarts
// and a session-scoped store that lives as long as the process.
package kvstore

import (
	"context"

	depoterrors "github.com/jrsteele09/depot-client/internal/errors"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = depoterrors.ErrNotFound

// KV is a string key/value store. Delete of an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
