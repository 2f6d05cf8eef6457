// ABOUTME: Supervises one WebSocket connection on a dedicated goroutine
// ABOUTME: Runs handshake, read loop, and exactly-once teardown, reporting everything as queue items

package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/2389/wspoll/internal/config"
	"github.com/2389/wspoll/internal/event"
)

// Sink receives the items a connection produces. Push must be safe for
// concurrent use and must not block.
type Sink interface {
	Push(event.Item)
}

// Conn is one supervised WebSocket connection.
type Conn struct {
	ID string

	url    string
	header http.Header
	cfg    config.SessionConfig
	sink   Sink
	dialer *websocket.Dialer
	logger *slog.Logger

	// mu guards the fields below and serializes writes on ws.
	mu         sync.Mutex
	ws         *websocket.Conn
	state      State
	abandoned  bool
	closeTimer *time.Timer

	teardown sync.Once
	done     chan struct{}
}

// New creates a connection in the Connecting state. Call Start to run it.
// The url and header are expected to be validated by the caller. Unset
// fields of cfg take their defaults.
func New(url string, header http.Header, cfg config.SessionConfig, sink Sink, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	return &Conn{
		ID:     id,
		url:    url,
		header: header,
		cfg:    cfg,
		sink:   sink,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logger.With("component", "session", "conn_id", id),
		state:  Connecting,
		done:   make(chan struct{}),
	}
}

// Start launches the supervising goroutine and returns immediately.
func (c *Conn) Start() {
	go c.run()
}

// Done is closed once the supervising goroutine has exited.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes a text frame. It returns ErrNotOpen when the connection is not
// Open. A failed write is also reported as an error item.
func (c *Conn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ws == nil || c.state != Open {
		return ErrNotOpen
	}

	if c.cfg.WriteTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		err = fmt.Errorf("writing message: %w", err)
		c.logger.Warn("send failed", "error", err)
		c.emitLocked(event.Failed(err))
		return err
	}
	return nil
}

// Close starts the close handshake and returns without waiting for the peer.
// It is a no-op unless the connection is Open. If the peer does not answer
// within the close timeout the socket is closed locally.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ws == nil || c.state != Open {
		return nil
	}
	c.state = Closing

	ws := c.ws
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		err = fmt.Errorf("sending close frame: %w", err)
		c.logger.Warn("close failed", "error", err)
		c.emitLocked(event.Failed(err))
		// The read loop observes this as a local close and tears down.
		_ = ws.Close()
		return err
	}

	c.closeTimer = time.AfterFunc(c.cfg.CloseTimeout, func() {
		c.logger.Debug("close handshake timed out", "timeout", c.cfg.CloseTimeout)
		_ = ws.Close()
	})
	c.logger.Debug("close frame sent")
	return nil
}

// Abandon detaches the connection from its owner. The socket is closed and
// the supervising goroutine exits without pushing further items.
func (c *Conn) Abandon() {
	c.mu.Lock()
	c.abandoned = true
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
	c.logger.Debug("connection abandoned")
}

// run is the supervising goroutine.
func (c *Conn) run() {
	defer close(c.done)
	defer c.finish()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("supervisor panic", "panic", r)
			c.emit(event.Failed(fmt.Errorf("supervisor panic: %v", r)))
		}
	}()

	ws, err := c.handshake()
	if err != nil {
		c.logger.Warn("handshake failed", "url", c.url, "error", err)
		c.emit(event.Failed(err))
		return
	}

	if c.cfg.ReadLimit > 0 {
		ws.SetReadLimit(c.cfg.ReadLimit)
	}

	if !c.markOpen(ws) {
		_ = ws.Close()
		return
	}

	c.logger.Info("connection open", "url", c.url)
	c.readLoop()
}

// markOpen installs the socket and reports false if the connection was
// abandoned during the handshake.
func (c *Conn) markOpen(ws *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.abandoned {
		return false
	}
	c.ws = ws
	c.state = Open
	c.emitLocked(event.Opened())
	return true
}

// handshake dials the peer and performs the WebSocket upgrade.
func (c *Conn) handshake() (*websocket.Conn, error) {
	ws, resp, err := c.dialer.DialContext(context.Background(), c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, err
	}
	return ws, nil
}

// readLoop reads frames until a terminal condition. Only text frames are
// surfaced; other frame types are dropped.
func (c *Conn) readLoop() {
	failures := 0
	for {
		ws := c.handle()
		if ws == nil {
			return
		}

		kind, data, err := ws.ReadMessage()
		if err == nil {
			failures = 0
			if kind == websocket.TextMessage {
				c.emit(event.Text(string(data)))
			}
			continue
		}

		outcome := classifyReadError(err)
		switch outcome {
		case readPeerClosed:
			c.logger.Debug("peer closed connection", "reason", err)
		case readLocallyClosed:
			c.emit(event.Failed(ErrAlreadyClosed))
		case readLost:
			c.logger.Warn("connection lost", "error", err)
			c.emit(event.Failed(fmt.Errorf("%w: %v", ErrConnectionLost, err)))
		default:
			failures++
			c.logger.Warn("read failed", "error", err, "consecutive", failures)
			c.emit(event.Failed(err))
			if failures >= c.cfg.MaxReadErrors {
				c.logger.Warn("giving up after repeated read errors", "count", failures)
				return
			}
			time.Sleep(c.cfg.ReadRetryInterval)
			continue
		}

		if outcome.terminal() {
			return
		}
	}
}

// handle returns the current socket, or nil once it has been removed.
func (c *Conn) handle() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws
}

// finish clears the handle and emits the terminal close event. It runs
// exactly once per connection.
func (c *Conn) finish() {
	c.teardown.Do(func() {
		c.mu.Lock()
		ws := c.ws
		c.ws = nil
		c.state = Closed
		if c.closeTimer != nil {
			c.closeTimer.Stop()
		}
		c.emitLocked(event.Closed())
		c.mu.Unlock()

		if ws != nil {
			_ = ws.Close()
		}
		c.logger.Info("connection closed")
	})
}

func (c *Conn) emit(it event.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitLocked(it)
}

// emitLocked pushes an item unless the connection was abandoned. Must be
// called with mu held.
func (c *Conn) emitLocked(it event.Item) {
	if c.abandoned {
		return
	}
	c.sink.Push(it)
}
