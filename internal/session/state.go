// ABOUTME: Connection lifecycle states
// ABOUTME: Disconnected, Connecting, Open, Closing, Closed

package session

// State is the lifecycle state of a connection.
type State int

const (
	// Disconnected means no connection attempt exists.
	Disconnected State = iota
	// Connecting means the handshake is in progress.
	Connecting
	// Open means the socket is established and being read.
	Open
	// Closing means a close frame was sent and the peer's reply is pending.
	Closing
	// Closed means the connection has been torn down.
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
