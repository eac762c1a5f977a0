package api

import "sync"

// Navigator exposes the application's current location and lets the client
// force a redirect, e.g. to the login entry point after a 401.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

var _ Navigator = (*PathNavigator)(nil)

// PathNavigator is an in-memory Navigator that records every redirect
type PathNavigator struct {
	mu        sync.RWMutex
	current   string
	redirects []string
}

func NewPathNavigator(start string) *PathNavigator {
	return &PathNavigator{current: start}
}

func (n *PathNavigator) CurrentPath() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Navigate moves to path as the user would, without counting as a redirect
func (n *PathNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

func (n *PathNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	n.redirects = append(n.redirects, path)
}

func (n *PathNavigator) Redirects() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.redirects))
	copy(out, n.redirects)
	return out
}
