package session

import "github.com/jrsteele09/depot-client/users"

type State int

const (
	// StateUnknown is the boot state, before hydration has decided
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the session. Consumers must not redirect
// while Loading is true: the state is still being decided.
type Snapshot struct {
	State   State
	User    *users.Profile
	Loading bool
}

// IsAuthenticated implies User != nil
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
