// ABOUTME: Error values and read error classification for supervised connections
// ABOUTME: Separates terminal read failures from ones the read loop retries

package session

import (
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

var (
	// ErrNotOpen is returned by Send when the connection has no open socket.
	ErrNotOpen = errors.New("connection is not open")

	// ErrAlreadyClosed reports a read on a socket that was closed locally.
	ErrAlreadyClosed = errors.New("connection already closed")

	// ErrConnectionLost reports a socket that ended without a close frame.
	ErrConnectionLost = errors.New("connection lost")
)

// readOutcome tells the read loop what to do with a failed read.
type readOutcome int

const (
	// readRetry reports the error and reads again.
	readRetry readOutcome = iota
	// readPeerClosed ends the loop silently.
	readPeerClosed
	// readLocallyClosed ends the loop after reporting ErrAlreadyClosed.
	readLocallyClosed
	// readLost ends the loop after reporting ErrConnectionLost.
	readLost
)

func (o readOutcome) terminal() bool {
	return o != readRetry
}

// classifyReadError maps a read error onto the connection error taxonomy.
func classifyReadError(err error) readOutcome {
	var closeErr *websocket.CloseError

	switch {
	case errors.Is(err, net.ErrClosed), errors.Is(err, ErrAlreadyClosed):
		return readLocallyClosed
	case errors.As(err, &closeErr):
		// gorilla reports a dropped TCP stream as an abnormal closure
		if closeErr.Code == websocket.CloseAbnormalClosure {
			return readLost
		}
		return readPeerClosed
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return readLost
	default:
		return readRetry
	}
}
