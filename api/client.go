// Package api is the single HTTP entry point to the backend. It attaches the
// bearer token to every call and reacts to authentication failures for the
// whole application: a 401 anywhere tears the session down.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/depot-client/internal/config"
	"github.com/jrsteele09/depot-client/notify"
	"github.com/jrsteele09/depot-client/token"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 15 * time.Second

	contentTypeJSON = "application/json"
	maxBodyBytes    = 10 << 20
)

// Options configures a Client
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	LoginPath   string
	PublicPaths config.PublicPaths

	Tokens    token.Store
	Navigator Navigator
	Notifier  notify.Notifier

	// Transport is the underlying round tripper, http.DefaultTransport when nil
	Transport http.RoundTripper
}

// Client never retries. Timeouts, 401s, 5xx and network failures all come
// back to the caller as errors; only the 401 has a side effect.
type Client struct {
	baseURL     string
	origin      *url.URL
	loginPath   string
	publicPaths config.PublicPaths
	http        *http.Client
	tokens      token.Store
	nav         Navigator
	notifier    notify.Notifier

	listenerLock sync.RWMutex
	listeners    []func()

	redirected atomic.Bool
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("[api New] base url is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("[api New] token store is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.PublicPaths == nil {
		opts.PublicPaths = config.NewPublicPaths(opts.LoginPath)
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	origin, err := url.Parse(opts.BaseURL)
	if err != nil || (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return nil, fmt.Errorf("[api New] base url %q must be an absolute http(s) url", opts.BaseURL)
	}

	return &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		origin:      origin,
		loginPath:   opts.LoginPath,
		publicPaths: opts.PublicPaths,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &bearerTransport{base: opts.Transport, tokens: opts.Tokens, origin: origin},
			// a redirect off the backend origin comes back as a plain 3xx StatusError
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if !sameOrigin(origin, req.URL) {
					log.Warn().Str("location", req.URL.Redacted()).Msg("refusing redirect away from the backend")
					return http.ErrUseLastResponse
				}
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return nil
			},
		},
		tokens:   opts.Tokens,
		nav:      opts.Navigator,
		notifier: opts.Notifier,
	}, nil
}

// NewFromConfig builds a Client from the application configuration
func NewFromConfig(cfg config.APIConfig, tokens token.Store, nav Navigator, notifier notify.Notifier) (*Client, error) {
	return New(Options{
		BaseURL:     cfg.GetAPIBaseURL(),
		Timeout:     cfg.GetRequestTimeout(),
		LoginPath:   cfg.GetLoginPath(),
		PublicPaths: cfg.GetPublicPaths(),
		Tokens:      tokens,
		Navigator:   nav,
		Notifier:    notifier,
	})
}

// OnUnauthorized registers fn to run whenever any call comes back 401, after
// the token has been deleted. The session layer uses it to clear its state
// without the client depending on it.
func (c *Client) OnUnauthorized(fn func()) {
	if fn == nil {
		return
	}
	c.listenerLock.Lock()
	defer c.listenerLock.Unlock()
	c.listeners = append(c.listeners, fn)
}

// ResetRedirect re-arms the login redirect once a fresh session exists
func (c *Client) ResetRedirect() {
	c.redirected.Store(false)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends in as JSON (when non nil) and decodes a 2xx body into out (when non nil)
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("[api %s %s] marshal request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	target, err := c.url(path)
	if err != nil {
		return fmt.Errorf("[api %s %s] %w", method, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("[api %s %s] build request: %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metricLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metricRequests.WithLabelValues(method, statusClass(0)).Inc()
		return c.noResponse(ctx, method, path, err)
	}
	defer resp.Body.Close()
	metricRequests.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("[api %s %s] read response: %w", method, path, err)
	}

	// a rejected credential exchange says nothing about the stored session
	if resp.StatusCode == http.StatusUnauthorized && !isLoginPath(path) {
		c.unauthorized(ctx)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("[api %s %s] decode response: %w", method, path, err)
	}
	return nil
}

// url resolves path against the base url. Absolute urls are only accepted
// when they point at the backend origin.
func (c *Client) url(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, err := url.Parse(path)
		if err != nil {
			return "", err
		}
		if !sameOrigin(c.origin, u) {
			return "", ErrForeignOrigin
		}
		return path, nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path, nil
}

func isLoginPath(path string) bool {
	path, _, _ = strings.Cut(path, "?")
	return strings.TrimSuffix(path, "/") == RouteAuthLogin
}

func sameOrigin(origin, u *url.URL) bool {
	return u != nil && strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}

// unauthorized tears the session down: token gone, listeners told, and at
// most one redirect to login unless the user is already on a public page.
func (c *Client) unauthorized(ctx context.Context) {
	metricUnauthorized.Inc()
	c.tokens.Delete(context.WithoutCancel(ctx))

	c.listenerLock.RLock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerLock.RUnlock()
	for _, fn := range listeners {
		fn()
	}

	if c.nav == nil {
		return
	}
	current := c.nav.CurrentPath()
	if c.publicPaths.IsPublic(current) {
		return
	}
	if c.redirected.CompareAndSwap(false, true) {
		log.Info().Str("from", current).Str("to", c.loginPath).Msg("session rejected, redirecting to login")
		c.nav.Redirect(c.loginPath)
	}
}

func (c *Client) noResponse(ctx context.Context, method, path string, err error) error {
	metricNoResponse.Inc()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// the caller gave up; nothing to tell the user
		return fmt.Errorf("[api %s %s] %w: %w", method, path, ErrNoResponse, err)
	}

	log.Warn().Err(err).Str("method", method).Str("path", path).Msg("no response from backend")
	if c.notifier != nil {
		c.notifier.Notify(context.WithoutCancel(ctx), "Connection problem", "The server could not be reached. Check your connection and try again.")
	}
	return fmt.Errorf("[api %s %s] %w: %w", method, path, ErrNoResponse, err)
}

// errorMessage pulls the human readable message out of an error body, if any
func errorMessage(data []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(body.Message, &msg); err == nil && msg != "" {
		return msg
	}
	var msgs []string
	if err := json.Unmarshal(body.Message, &msgs); err == nil && len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}
	return body.Error
}
