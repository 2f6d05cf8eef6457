// ABOUTME: Tests for read error classification
// ABOUTME: Maps close frames, local closes, EOFs, and other errors onto the error taxonomy

package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestClassifyReadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want readOutcome
	}{
		{"normal close frame", &websocket.CloseError{Code: websocket.CloseNormalClosure}, readPeerClosed},
		{"going away", &websocket.CloseError{Code: websocket.CloseGoingAway, Text: "bye"}, readPeerClosed},
		{"abnormal closure", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, readLost},
		{"local close", &net.OpError{Op: "read", Net: "tcp", Err: net.ErrClosed}, readLocallyClosed},
		{"already closed sentinel", fmt.Errorf("reading: %w", ErrAlreadyClosed), readLocallyClosed},
		{"eof", io.EOF, readLost},
		{"unexpected eof", fmt.Errorf("frame: %w", io.ErrUnexpectedEOF), readLost},
		{"read limit", websocket.ErrReadLimit, readRetry},
		{"other", errors.New("bad frame"), readRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyReadError(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != readRetry, got.terminal())
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closing", Closing.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "unknown", State(99).String())
}
