// ABOUTME: Caller-facing WebSocket client with a non-blocking poll
// ABOUTME: Spawns a connection supervisor on Connect and drains its queued items one at a time

package client

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/2389/wspoll/internal/config"
	"github.com/2389/wspoll/internal/event"
	"github.com/2389/wspoll/internal/queue"
	"github.com/2389/wspoll/internal/session"
)

var (
	// ErrNotConnected is returned by Send when there is no open connection.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidURL is returned by Connect for a malformed endpoint.
	ErrInvalidURL = errors.New("invalid websocket url")

	// ErrInvalidHeader is returned by Connect for a malformed or reserved header.
	ErrInvalidHeader = errors.New("invalid header")
)

// Client owns at most one connection and the queue its items land on.
type Client struct {
	cfg    config.SessionConfig
	queue  *queue.Queue
	base   *slog.Logger
	logger *slog.Logger

	mu   sync.Mutex
	conn *session.Conn
}

// New creates a client with no connection. Pass nil logger for default.
func New(cfg config.SessionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		queue:  queue.New(),
		base:   logger,
		logger: logger.With("component", "client"),
	}
}

// Connect validates its arguments and starts a connection in the background.
// Any existing connection is abandoned. Connect never waits for the network.
func (c *Client) Connect(rawURL string, headers []Header) error {
	u, err := validateURL(rawURL)
	if err != nil {
		return err
	}
	header, err := buildHeader(headers)
	if err != nil {
		return err
	}

	conn := session.New(u.String(), header, c.cfg, c.queue, c.base)

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()

	if old != nil {
		c.logger.Debug("replacing connection", "old_conn_id", old.ID, "conn_id", conn.ID)
		old.Abandon()
	}

	c.logger.Debug("connecting", "url", u.Redacted(), "conn_id", conn.ID)
	conn.Start()
	return nil
}

// Send writes text to the open connection. Write failures are returned and
// also queued as an error item.
func (c *Client) Send(text string) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	if err := conn.Send(text); err != nil {
		if errors.Is(err, session.ErrNotOpen) {
			return ErrNotConnected
		}
		return err
	}
	return nil
}

// Close starts a graceful close of the current connection. It does not wait
// for the peer and is a no-op when there is nothing open to close.
func (c *Client) Close() error {
	conn := c.current()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Poll removes and returns the oldest queued item in its string encoding.
// It returns false when nothing is queued. Poll never blocks.
func (c *Client) Poll() (string, bool) {
	it, ok := c.queue.Poll()
	if !ok {
		return "", false
	}
	return it.Encode(), true
}

// PollItem is Poll without the string encoding.
func (c *Client) PollItem() (event.Item, bool) {
	return c.queue.Poll()
}

// Pending returns the number of items waiting to be polled.
func (c *Client) Pending() int {
	return c.queue.Len()
}

// State returns the state of the current connection, or Disconnected when
// Connect has never been called.
func (c *Client) State() session.State {
	conn := c.current()
	if conn == nil {
		return session.Disconnected
	}
	return conn.State()
}

func (c *Client) current() *session.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
