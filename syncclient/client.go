// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

const (
	DefaultPollInterval = 15 * time.Second
	DefaultReconnectMin = time.Second
	DefaultReconnectMax = 30 * time.Second
)

type Options struct {
	// BaseURL of the server, e.g. http://localhost:3000
	BaseURL    string
	HTTPClient *http.Client
	Dialer     *websocket.Dialer

	// PollInterval is how often tickets are fetched while the sync channel
	// is down
	PollInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	// OnNewTickets receives tickets whose IDs were not in the previous copy
	OnNewTickets func([]models.Ticket)
	// OnChange is called after any collection was replaced
	OnChange func(event string)
}

// Client keeps a Cache in step with a server: snapshots on start, pushed
// updates over WebSocket, and polling while the socket is down.
type Client struct {
	opts      Options
	base      *url.URL
	wsURL     string
	cache     *Cache
	connected atomic.Bool
	config    atomic.Pointer[models.AppConfig]
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	ws := *base
	switch base.Scheme {
	case "http":
		ws.Scheme = "ws"
	case "https":
		ws.Scheme = "wss"
	default:
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", opts.BaseURL)
	}
	ws.Path = base.Path + "/ws"

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ReconnectMin <= 0 {
		opts.ReconnectMin = DefaultReconnectMin
	}
	if opts.ReconnectMax < opts.ReconnectMin {
		opts.ReconnectMax = max(DefaultReconnectMax, opts.ReconnectMin)
	}

	return &Client{
		opts:  opts,
		base:  base,
		wsURL: ws.String(),
		cache: NewCache(),
	}, nil
}

func (c *Client) Cache() *Cache {
	return c.cache
}

// Connected reports whether the sync channel is up
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Config returns the server config fetched by the last Sync
func (c *Client) Config() (models.AppConfig, bool) {
	cfg := c.config.Load()
	if cfg == nil {
		return models.AppConfig{}, false
	}
	return *cfg, true
}

// Sync fetches the server config and all three collections
func (c *Client) Sync(ctx context.Context) error {
	var cfg models.AppConfig
	if _, err := c.getJSON(ctx, "/api/config", &cfg); err != nil {
		return err
	}
	c.config.Store(&cfg)

	for _, s := range []struct{ path, event string }{
		{"/api/tickets", models.EventTickets},
		{"/api/engineers", models.EventEngineers},
		{"/api/contacts", models.EventContacts},
	} {
		if err := c.fetchCollection(ctx, s.path, s.event); err != nil {
			return err
		}
	}
	return nil
}

// Run syncs and then follows the server until ctx is cancelled
func (c *Client) Run(ctx context.Context) error {
	if err := c.Sync(ctx); err != nil {
		slog.Warn("initial sync failed", "server", c.base.String(), "error", err)
	}

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		c.pollLoop(ctx)
	}()

	backoff := c.opts.ReconnectMin
	for {
		connected, err := c.stream(ctx)
		if ctx.Err() != nil {
			<-pollDone
			return ctx.Err()
		}
		if connected {
			backoff = c.opts.ReconnectMin
		}
		slog.Warn("sync channel down", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			<-pollDone
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.opts.ReconnectMax)
	}
}

// stream reads pushed updates until the connection drops
func (c *Client) stream(ctx context.Context) (connected bool, err error) {
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return false, err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		conn.Close()
	}()

	c.cache.ResetRevisions()
	c.connected.Store(true)
	defer c.connected.Store(false)
	slog.Info("sync channel connected", "url", c.wsURL)

	for {
		var msg models.SyncMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return true, err
		}
		c.apply(msg, c.cache.Apply)
	}
}

func (c *Client) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Connected() {
				continue
			}
			if err := c.fetchCollection(ctx, "/api/tickets", models.EventTickets); err != nil && ctx.Err() == nil {
				slog.Warn("ticket poll failed", "error", err)
			}
		}
	}
}

func (c *Client) fetchCollection(ctx context.Context, path, event string) error {
	var data json.RawMessage
	rev, err := c.getJSON(ctx, path, &data)
	if err != nil {
		return err
	}
	c.apply(models.SyncMessage{Event: event, Data: data, Revision: rev}, c.cache.ApplySnapshot)
	return nil
}

func (c *Client) apply(msg models.SyncMessage, into func(models.SyncMessage) ([]models.Ticket, error)) {
	added, err := into(msg)
	if errors.Is(err, ErrStale) {
		slog.Debug("dropping out-of-order sync message", "event", msg.Event, "revision", msg.Revision)
		return
	}
	if err != nil {
		slog.Warn("ignoring sync message", "event", msg.Event, "error", err)
		return
	}
	if len(added) > 0 && c.opts.OnNewTickets != nil {
		c.opts.OnNewTickets(added)
	}
	if c.opts.OnChange != nil {
		c.opts.OnChange(msg.Event)
	}
}

// getJSON decodes a GET response and returns the revision from its ETag
func (c *Client) getJSON(ctx context.Context, path string, v any) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("GET %s: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}
	return parseETag(resp.Header.Get("ETag")), nil
}

func parseETag(tag string) uint64 {
	tag = strings.Trim(strings.TrimPrefix(tag, "W/"), `"`)
	rev, err := strconv.ParseUint(tag, 10, 64)
	if err != nil {
		return 0
	}
	return rev
}
