// ABOUTME: WebSocket echo endpoint for local testing
// ABOUTME: Upgrades HTTP requests and writes every received frame back to the sender

package echo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades requests to WebSocket and echoes frames.
type Handler struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	active   atomic.Int64
}

var _ http.Handler = (*Handler)(nil)

// NewHandler creates an echo handler. Pass nil logger for default.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With("component", "echo"),
	}
}

// Active returns the number of connections currently being served.
func (h *Handler) Active() int64 {
	return h.active.Load()
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	logger := h.logger.With("client_id", id, "remote_addr", r.RemoteAddr)
	h.active.Add(1)
	defer h.active.Add(-1)
	defer conn.Close()

	logger.Debug("client connected", "user_agent", r.UserAgent())
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("read failed", "error", err)
			}
			logger.Debug("client disconnected")
			return
		}
		if err := conn.WriteMessage(kind, data); err != nil {
			logger.Warn("write failed", "error", err)
			return
		}
	}
}

// Server runs the echo handler on a TCP address.
type Server struct {
	addr    string
	path    string
	handler *Handler
	logger  *slog.Logger
}

// NewServer creates an echo server for addr, serving the endpoint at path.
func NewServer(addr, path string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		path:    path,
		handler: NewHandler(logger),
		logger:  logger.With("component", "echo_server"),
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(s.path, s.handler)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("echo endpoint listening", "addr", ln.Addr().String(), "path", s.path)
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
