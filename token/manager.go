package token

import (
	"context"
	"errors"

	"github.com/jrsteele09/depot-client/bridge"
	"github.com/jrsteele09/depot-client/token/kvstore"
	"github.com/rs/zerolog/log"
)

var _ Store = (*Manager)(nil)

// Manager stores the token with the host bridge when one is present, and
// otherwise redundantly in a durable and a session-scoped store so either
// one being cleared on its own does not lose the session.
type Manager struct {
	bridge  bridge.Bridge
	durable kvstore.KV
	session kvstore.KV
	key     string
}

type ManagerOption func(*Manager)

// WithBridge sets the host bridge probed before every operation
func WithBridge(b bridge.Bridge) ManagerOption {
	return func(m *Manager) {
		m.bridge = b
	}
}

// WithKey overrides DefaultKey
func WithKey(key string) ManagerOption {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// New builds a Manager over the durable and session-scoped fallback stores.
// Either store may be nil, in which case it is skipped.
func New(durable, session kvstore.KV, options ...ManagerOption) *Manager {
	m := &Manager{
		durable: durable,
		session: session,
		key:     DefaultKey,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Get returns the persisted token. The bridge wins when available; otherwise
// the durable store is read before the session store.
func (m *Manager) Get(ctx context.Context) (string, bool) {
	if bridge.IsAvailable(m.bridge) {
		t, err := m.bridge.GetToken(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("reading token from host bridge")
			return "", false
		}
		return t, t != ""
	}

	for _, s := range m.fallbacks() {
		t, err := s.kv.Get(ctx, m.key)
		if err != nil {
			if !errors.Is(err, kvstore.ErrNotFound) {
				log.Warn().Err(err).Str("store", s.name).Msg("reading token")
			}
			continue
		}
		if t != "" {
			return t, true
		}
	}
	return "", false
}

// Set persists the token. Without a bridge it is written to both fallback stores.
func (m *Manager) Set(ctx context.Context, token string) {
	if token == "" {
		log.Warn().Msg("ignoring empty token")
		return
	}

	if bridge.IsAvailable(m.bridge) {
		if err := m.bridge.SetToken(ctx, token); err != nil {
			log.Err(err).Msg("writing token to host bridge")
		}
		return
	}

	for _, s := range m.fallbacks() {
		if err := s.kv.Set(ctx, m.key, token); err != nil {
			log.Err(err).Str("store", s.name).Msg("writing token")
		}
	}
}

// Delete removes the token from wherever it may live. Deleting an absent
// token is a no-op.
func (m *Manager) Delete(ctx context.Context) {
	if bridge.IsAvailable(m.bridge) {
		if err := m.bridge.DeleteToken(ctx); err != nil {
			log.Err(err).Msg("deleting token from host bridge")
		}
		return
	}

	for _, s := range m.fallbacks() {
		if err := s.kv.Delete(ctx, m.key); err != nil {
			log.Err(err).Str("store", s.name).Msg("deleting token")
		}
	}
}

type namedKV struct {
	name string
	kv   kvstore.KV
}

// fallbacks lists the configured stores in read priority order
func (m *Manager) fallbacks() []namedKV {
	stores := make([]namedKV, 0, 2)
	if m.durable != nil {
		stores = append(stores, namedKV{name: "durable", kv: m.durable})
	}
	if m.session != nil {
		stores = append(stores, namedKV{name: "session", kv: m.session})
	}
	return stores
}
