// Package notify delivers short user-facing notices through whichever
// channel the runtime offers: the host shell when present, otherwise the log.
package notify

import (
	"context"

	"github.com/jrsteele09/depot-client/bridge"
	"github.com/rs/zerolog/log"
)

// Notifier is best effort: it never fails and never blocks on a missing channel
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

var _ Notifier = (*HostNotifier)(nil)

// HostNotifier prefers native notifications through the host bridge and
// degrades to a console warning.
type HostNotifier struct {
	bridge bridge.Bridge
}

func NewHostNotifier(b bridge.Bridge) *HostNotifier {
	return &HostNotifier{bridge: b}
}

func (n *HostNotifier) Notify(ctx context.Context, title, body string) {
	if n != nil && bridge.IsAvailable(n.bridge) {
		err := n.bridge.Notify(ctx, title, body)
		if err == nil {
			return
		}
		log.Debug().Err(err).Msg("host notification failed, falling back to console")
	}
	log.Warn().Str("title", title).Msg(body)
}

// Func adapts a function to the Notifier interface
type Func func(ctx context.Context, title, body string)

func (f Func) Notify(ctx context.Context, title, body string) {
	f(ctx, title, body)
}
