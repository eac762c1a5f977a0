package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	subjectTokenGet    = "token.get"
	subjectTokenSet    = "token.set"
	subjectTokenDelete = "token.delete"
	subjectNotify      = "notify"
)

// Request is the JSON payload sent to the shell on every bridge subject
type Request struct {
	ID    string `json:"id"`
	Token string `json:"token,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Reply is the JSON payload the shell answers with. A non empty Error marks a
// failed operation.
type Reply struct {
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// NATSConfig configures the connection to the desktop shell
type NATSConfig struct {
	// URL is the NATS server embedded in the shell
	URL string

	// Subject is the base subject the shell listens on
	Subject string

	// Timeout bounds every request/reply round trip
	Timeout time.Duration
}

var _ Bridge = (*NATSBridge)(nil)

// NATSBridge is a Bridge backed by NATS request/reply to the desktop shell.
type NATSBridge struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

// DialNATS connects to the shell. The connection keeps retrying in the
// background, so the bridge becomes available whenever the shell is up.
func DialNATS(cfg NATSConfig) (*NATSBridge, error) {
	if cfg.URL == "" {
		return nil, errors.New("[bridge DialNATS] url is required")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name("depot-client"),
		nats.Timeout(cfg.Timeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("host bridge disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("host bridge reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("[bridge DialNATS] connect to %s: %w", cfg.URL, err)
	}
	return NewNATSBridge(conn, cfg.Subject, cfg.Timeout), nil
}

func NewNATSBridge(conn *nats.Conn, subject string, timeout time.Duration) *NATSBridge {
	if subject == "" {
		subject = "depot.host"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &NATSBridge{conn: conn, subject: subject, timeout: timeout}
}

// Available reports whether the shell is reachable right now
func (b *NATSBridge) Available() bool {
	return b != nil && b.conn != nil && b.conn.IsConnected()
}

func (b *NATSBridge) GetToken(ctx context.Context) (string, error) {
	reply, err := b.request(ctx, subjectTokenGet, Request{})
	if err != nil {
		return "", err
	}
	return reply.Token, nil
}

func (b *NATSBridge) SetToken(ctx context.Context, token string) error {
	_, err := b.request(ctx, subjectTokenSet, Request{Token: token})
	return err
}

func (b *NATSBridge) DeleteToken(ctx context.Context) error {
	_, err := b.request(ctx, subjectTokenDelete, Request{})
	return err
}

func (b *NATSBridge) Notify(ctx context.Context, title, body string) error {
	_, err := b.request(ctx, subjectNotify, Request{Title: title, Body: body})
	return err
}

// Close drains and closes the connection
func (b *NATSBridge) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.Drain()
}

func (b *NATSBridge) request(ctx context.Context, op string, req Request) (Reply, error) {
	if !b.Available() {
		return Reply{}, ErrUnavailable
	}
	req.ID = uuid.NewString()
	payload, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("[bridge %s] marshal: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	msg, err := b.conn.RequestWithContext(ctx, Subject(b.subject, op), payload)
	if err != nil {
		return Reply{}, fmt.Errorf("[bridge %s] request: %w", op, err)
	}
	return DecodeReply(op, msg.Data)
}

// Subject builds the full subject for an operation
func Subject(base, op string) string {
	return base + "." + op
}

// DecodeReply parses a shell reply, turning a reported error into a Go error
func DecodeReply(op string, data []byte) (Reply, error) {
	var reply Reply
	if len(data) == 0 {
		return reply, nil
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return Reply{}, fmt.Errorf("[bridge %s] decode reply: %w", op, err)
	}
	if reply.Error != "" {
		return reply, fmt.Errorf("[bridge %s] %w: %s", op, ErrShell, reply.Error)
	}
	return reply, nil
}
