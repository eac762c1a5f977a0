package main

import (
	"context"
	"io"
	"time"

	"github.com/jrsteele09/depot-client/api"
	"github.com/jrsteele09/depot-client/bridge"
	"github.com/jrsteele09/depot-client/internal/config"
	depoterrors "github.com/jrsteele09/depot-client/internal/errors"
	"github.com/jrsteele09/depot-client/notify"
	"github.com/jrsteele09/depot-client/session"
	"github.com/jrsteele09/depot-client/token"
	"github.com/jrsteele09/depot-client/token/kvstore"
	"github.com/rs/zerolog/log"
)

// app is everything a command needs, wired from configuration
type app struct {
	client     *api.Client
	controller *session.Controller
	nav        *cliNavigator
	closers    []io.Closer
	// how long Close waits for login notifications to reach the host
	notifyWait time.Duration
}

func newApp(ctx context.Context, c config.Config, location string) (*app, error) {
	a := &app{
		nav:        &cliNavigator{PathNavigator: api.NewPathNavigator(location)},
		notifyWait: c.GetBridgeTimeout(),
	}

	var opts []token.ManagerOption
	var host bridge.Bridge
	if url := c.GetBridgeURL(); url != "" {
		b, err := bridge.DialNATS(bridge.NATSConfig{URL: url, Subject: c.GetBridgeSubject(), Timeout: c.GetBridgeTimeout()})
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("desktop shell unavailable, using local storage")
		} else {
			host = b
			a.closers = append(a.closers, b)
			opts = append(opts, token.WithBridge(b))
		}
	}

	durable, err := openDurable(c)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := durable.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}
	opts = append(opts, token.WithKey(c.GetTokenKey()))
	tokens := token.New(durable, kvstore.NewMemory(), opts...)

	notifier := notify.NewHostNotifier(host)
	client, err := api.NewFromConfig(c, tokens, a.nav, notifier)
	if err != nil {
		a.Close()
		return nil, depoterrors.Wrapf(err, "[depot newApp] api client")
	}
	a.client = client
	a.controller = session.NewController(client, tokens, notifier)
	a.controller.Hydrate(ctx)
	return a, nil
}

// openDurable picks Redis when configured, otherwise the SQLite file in the data folder
func openDurable(c config.StorageConfig) (kvstore.KV, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		log.Debug().Str("addr", addr).Msg("using redis token storage")
		return kvstore.NewRedis(kvstore.RedisConfig{
			Addr:     addr,
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
			Prefix:   "depot:",
		}), nil
	}

	path := c.GetTokenDBPath()
	db, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, depoterrors.Wrapf(err, "[depot openDurable] %s", path)
	}
	return db, nil
}

func (a *app) Close() {
	if a.controller != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.notifyWait)
		if err := a.controller.WaitNotifications(ctx); err != nil {
			log.Debug().Err(err).Msg("login notification still pending")
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Debug().Err(err).Msg("close")
		}
	}
}

// cliNavigator tells the user to log in again instead of changing pages
type cliNavigator struct {
	*api.PathNavigator
}

func (n *cliNavigator) Redirect(path string) {
	n.PathNavigator.Redirect(path)
	log.Warn().Msg("your session has expired, run `depot login` to sign in again")
}
