// Package session owns the authenticate/deauthenticate state machine. The
// Controller is the only writer of session state; the rest of the
// application reads snapshots of it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jrsteele09/depot-client/api"
	"github.com/jrsteele09/depot-client/notify"
	"github.com/jrsteele09/depot-client/token"
	"github.com/jrsteele09/depot-client/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	opLogin   = "login"
	opRefresh = "refresh"
)

// API is the part of the backend client the controller needs
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	OnUnauthorized(fn func())
	ResetRedirect()
}

var _ API = (*api.Client)(nil)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Controller struct {
	api      API
	tokens   token.Store
	notifier notify.Notifier

	mu          sync.RWMutex
	state       State
	user        *users.Profile
	loading     bool
	inFlight    int    // hydrations and logins still running
	generation  uint64 // bumped whenever the session is cleared
	subscribers map[int]func(Snapshot)
	nextSubID   int

	hydrateOnce sync.Once
	authLock    sync.Mutex // held by hydration and login
	refresh     singleflight.Group
	pending     sync.WaitGroup // login notifications not yet delivered
}

// NewController creates a controller in the Unknown state and registers it
// for the client's global 401 teardown. notifier may be nil.
func NewController(client API, tokens token.Store, notifier notify.Notifier) *Controller {
	c := &Controller{
		api:         client,
		tokens:      tokens,
		notifier:    notifier,
		state:       StateUnknown,
		loading:     true,
		subscribers: make(map[int]func(Snapshot)),
	}
	client.OnUnauthorized(c.handleUnauthorized)
	return c
}

// Snapshot returns a copy of the current session state
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Subscribe calls fn after every state change until the returned func is called
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Hydrate restores the session from a persisted token. It runs once per
// controller; later calls just return the current state. Failures are
// silent and leave the session anonymous with the token purged.
func (c *Controller) Hydrate(ctx context.Context) Snapshot {
	c.hydrateOnce.Do(func() {
		c.authLock.Lock()
		defer c.authLock.Unlock()
		c.begin()
		defer c.end()
		c.hydrate(ctx)
	})
	return c.Snapshot()
}

func (c *Controller) hydrate(ctx context.Context) {
	if _, ok := c.tokens.Get(ctx); !ok {
		log.Debug().Msg("no persisted token, starting anonymous")
		c.clear()
		return
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	profile, err := c.fetchProfile(ctx)
	if err != nil {
		log.Info().Err(err).Msg("persisted session could not be restored")
		c.tokens.Delete(context.WithoutCancel(ctx))
		c.clear()
		return
	}
	c.api.ResetRedirect()
	if !c.authenticate(profile, gen) {
		c.clear()
	}
}

// Login exchanges credentials for a token, persists it and loads the
// profile. On any failure after the token is written, the token is purged
// so the session is never left half authenticated. A call made while
// hydration or another login is running fails with ErrLoginInProgress.
func (c *Controller) Login(ctx context.Context, email, password string) (*users.Profile, error) {
	if !c.authLock.TryLock() {
		return nil, ErrLoginInProgress
	}
	defer c.authLock.Unlock()

	c.begin()
	defer c.end()

	// a logout or 401 from here on wins over this login
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	var raw json.RawMessage
	if err := c.api.Post(ctx, api.RouteAuthLogin, credentials{Email: email, Password: password}, &raw); err != nil {
		log.Info().Err(err).Str("email", email).Msg("login rejected")
		c.settle()
		return nil, classify(opLogin, err)
	}

	tok, err := extractToken(raw)
	if err != nil {
		log.Warn().Msg("login response carried no token")
		c.settle()
		return nil, classify(opLogin, err)
	}

	c.tokens.Set(ctx, tok)
	profile, err := c.fetchProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch after login failed")
		c.tokens.Delete(context.WithoutCancel(ctx))
		c.clear()
		return nil, classify(opLogin, err)
	}

	c.api.ResetRedirect()
	if !c.authenticate(profile, gen) {
		// the session was torn down while the profile was in flight
		c.tokens.Delete(context.WithoutCancel(ctx))
		return nil, classify(opLogin, ErrNotAuthenticated)
	}
	log.Info().Str("user", profile.ID).Str("tenant", profile.TenantID).Msg("logged in")
	c.notifyLogin(profile)
	return profile.Clone(), nil
}

// Logout ends the session. The server call is best effort; local state is
// always cleared.
func (c *Controller) Logout(ctx context.Context) {
	c.setLoading(true)
	if _, ok := c.tokens.Get(ctx); ok {
		if err := c.api.Post(ctx, api.RouteAuthLogout, nil, nil); err != nil {
			log.Debug().Err(err).Msg("server logout failed, clearing locally")
		}
	}
	c.tokens.Delete(context.WithoutCancel(ctx))
	c.clear()
}

// RefreshUser re-reads the profile without touching the token, picking up
// edits made on the server. Concurrent calls share one request. On failure
// the session is left as it was (a 401 still tears it down via the client).
func (c *Controller) RefreshUser(ctx context.Context) (*users.Profile, error) {
	c.mu.RLock()
	gen := c.generation
	authenticated := c.state == StateAuthenticated
	c.mu.RUnlock()
	if !authenticated {
		return nil, ErrNotAuthenticated
	}

	// the shared request outlives any single caller; the client timeout bounds it
	shared := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan(opRefresh, func() (any, error) {
		return c.fetchProfile(shared)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, classify(opRefresh, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, classify(opRefresh, res.Err)
	}

	profile := res.Val.(*users.Profile)
	if !c.authenticate(profile, gen) {
		return nil, ErrNotAuthenticated
	}
	return profile.Clone(), nil
}

func (c *Controller) fetchProfile(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := c.api.Get(ctx, api.RouteAuthMe, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, ErrInvalidProfile
	}
	if role, ok := users.ParseRole(string(profile.Role)); ok {
		profile.Role = role
	} else {
		log.Warn().Str("role", string(profile.Role)).Msg("profile has an unknown role")
	}
	return &profile, nil
}

// handleUnauthorized is invoked by the API client on any 401. The client has
// already deleted the token.
func (c *Controller) handleUnauthorized() {
	c.clear()
}

// authenticate stores profile unless the session was cleared after gen was read
func (c *Controller) authenticate(profile *users.Profile, gen uint64) bool {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return false
	}
	c.user = profile.Clone()
	c.state = StateAuthenticated
	c.loading = false
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(snap, subs)
	return true
}

// clear drops the user and marks the session anonymous. Idempotent, so a
// 401 racing an explicit logout converges on the same state.
func (c *Controller) clear() {
	c.mu.Lock()
	c.generation++
	c.user = nil
	c.state = StateAnonymous
	c.loading = c.inFlight > 0
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(snap, subs)
}

// settle resolves an undecided session to anonymous after a failed login
// that never wrote a token. An existing authenticated session is kept.
func (c *Controller) settle() {
	c.mu.RLock()
	authenticated := c.state == StateAuthenticated
	c.mu.RUnlock()
	if !authenticated {
		c.clear()
	}
}

// begin marks a hydration or login as running
func (c *Controller) begin() {
	c.mu.Lock()
	c.inFlight++
	if c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = true
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(snap, subs)
}

// end resets loading once the last running hydration or login finishes
func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight--
	if c.inFlight > 0 || !c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = false
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(snap, subs)
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	if c.loading == loading {
		c.mu.Unlock()
		return
	}
	c.loading = loading
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(snap, subs)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, User: c.user.Clone(), Loading: c.loading}
}

func (c *Controller) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}

// notifyLogin is fire and forget; a failing or panicking notifier cannot
// affect the login that triggered it.
func (c *Controller) notifyLogin(profile *users.Profile) {
	if c.notifier == nil {
		return
	}
	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	body := fmt.Sprintf("Welcome back %s", name)
	if profile.TenantName != "" {
		body += " (" + profile.TenantName + ")"
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Warn().Interface("panic", r).Msg("login notification failed")
			}
		}()
		c.notifier.Notify(context.Background(), "Login successful", body)
	}()
}

// WaitNotifications blocks until every login notification has been handed to
// the notifier, or ctx is done. Short lived callers use it before exiting.
func (c *Controller) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
