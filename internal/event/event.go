// ABOUTME: Tagged items multiplexed on the client message queue
// ABOUTME: Encodes control events with a reserved prefix and decodes them back

package event

import (
	"strings"
)

// Prefix marks a control item in the string encoding.
const Prefix = "@"

// errorTag precedes the cause of an error event.
const errorTag = "error: "

// Kind identifies what an Item carries.
type Kind int

const (
	// Payload is a text message received from the peer.
	Payload Kind = iota
	// Open signals that the handshake completed.
	Open
	// Close is the terminal event of a connection.
	Close
	// Error reports a failure; Text holds the cause.
	Error
)

// String returns the name used in the string encoding.
func (k Kind) String() string {
	switch k {
	case Payload:
		return "payload"
	case Open:
		return "open"
	case Close:
		return "close"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Item is a single entry on the message queue.
type Item struct {
	Kind Kind
	Text string
}

// Text builds a payload item.
func Text(s string) Item {
	return Item{Kind: Payload, Text: s}
}

// Opened builds an open event.
func Opened() Item {
	return Item{Kind: Open}
}

// Closed builds a close event.
func Closed() Item {
	return Item{Kind: Close}
}

// Failed builds an error event carrying err's message.
func Failed(err error) Item {
	if err == nil {
		return Item{Kind: Error, Text: "unknown error"}
	}
	return Item{Kind: Error, Text: err.Error()}
}

// IsControl reports whether the item is a lifecycle event rather than a payload.
func (it Item) IsControl() bool {
	return it.Kind != Payload
}

// Encode renders the item in the prefix-tagged string form.
func (it Item) Encode() string {
	switch it.Kind {
	case Open:
		return Prefix + "open"
	case Close:
		return Prefix + "close"
	case Error:
		return Prefix + errorTag + it.Text
	default:
		return it.Text
	}
}

// String implements fmt.Stringer using the string encoding.
func (it Item) String() string {
	return it.Encode()
}

// Decode parses the string form back into an Item. Strings that start with
// Prefix but name no known event are treated as payloads.
func Decode(s string) Item {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return Text(s)
	}

	switch {
	case rest == "open":
		return Opened()
	case rest == "close":
		return Closed()
	case strings.HasPrefix(rest, errorTag):
		return Item{Kind: Error, Text: strings.TrimPrefix(rest, errorTag)}
	default:
		return Text(s)
	}
}
