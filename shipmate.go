// Package shipmate is the client SDK for the ShipMate delivery marketplace.
// It wires the session store, the authenticated request pipeline and the
// realtime hub together and hands out one client per backend domain.
package shipmate

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/shipmate-app/shipmate-go/auth"
	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/config"
	"github.com/shipmate-app/shipmate-go/realtime"
	"github.com/shipmate-app/shipmate-go/services/bookings"
	"github.com/shipmate-app/shipmate-go/services/drivers"
	"github.com/shipmate-app/shipmate-go/services/insurance"
	"github.com/shipmate-app/shipmate-go/services/messaging"
	"github.com/shipmate-app/shipmate-go/services/notifications"
	"github.com/shipmate-app/shipmate-go/services/shipments"
	"github.com/shipmate-app/shipmate-go/session"
)

// Client is the top-level SDK handle. All domain clients share one session,
// one request pipeline and one realtime connection.
type Client struct {
	Session  *session.Store
	HTTP     *client.Client
	Realtime *realtime.Hub

	Auth          *auth.Client
	Shipments     *shipments.Client
	Bookings      *bookings.Client
	Messaging     *messaging.Client
	Notifications *notifications.Client
	Drivers       *drivers.Client
	Insurance     *insurance.Client

	log zerolog.Logger
}

// Option customizes client construction.
type Option func(*options)

type options struct {
	notifier   client.Notifier
	httpClient *http.Client
	policy     client.Policy
	logger     *zerolog.Logger
	busy       func(bool)
}

// WithNotifier routes user-facing failure messages to n.
func WithNotifier(n client.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithPolicy overrides the request classification policy.
func WithPolicy(p client.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger replaces the logger built from Config.LogLevel.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithBusyHandler observes idle/busy transitions of the request pipeline,
// for loading indicators.
func WithBusyHandler(fn func(busy bool)) Option {
	return func(o *options) { o.busy = fn }
}

// New builds the SDK from a configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := buildLogger(cfg.LogLevel)
	if o.logger != nil {
		log = *o.logger
	}

	store := session.NewStore()

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	busy := client.NewBusyCounter(o.busy)

	pipeline, err := client.New(client.Config{
		BaseURL:    cfg.APIBaseURL,
		Session:    store,
		HTTPClient: httpClient,
		Policy:     o.policy,
		Busy:       busy,
		Notifier:   o.notifier,
		Logger:     log.With().Str("component", "client").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("build request pipeline: %w", err)
	}

	hub, err := realtime.New(realtime.Config{
		URL:               cfg.WSURL,
		Session:           store,
		ReconnectDelay:    cfg.ReconnectDelay,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		Logger:            log.With().Str("component", "realtime").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("build realtime hub: %w", err)
	}

	c := &Client{
		Session:  store,
		HTTP:     pipeline,
		Realtime: hub,
		log:      log,
	}
	c.Auth = auth.New(pipeline, store)
	c.Shipments = shipments.New(pipeline)
	c.Bookings = bookings.New(pipeline, hub)
	c.Messaging = messaging.New(pipeline, hub, store)
	c.Notifications = notifications.New(pipeline, hub, store)
	c.Drivers = drivers.New(pipeline)
	c.Insurance = insurance.New(pipeline)
	return c, nil
}

// Login signs in and brings the realtime connection up.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	identity, err := c.Auth.Login(ctx, email, password)
	if err != nil {
		return session.Identity{}, err
	}
	c.Realtime.Connect()
	return identity, nil
}

// Logout tears down the realtime connection and revokes the session.
func (c *Client) Logout(ctx context.Context) {
	c.Realtime.Disconnect()
	c.Auth.Logout(ctx)
}

func buildLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
