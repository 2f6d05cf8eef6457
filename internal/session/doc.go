// Package session supervises a single WebSocket connection on its own
// goroutine.
//
// # Overview
//
// A Conn drives one connection attempt from handshake to teardown without
// ever blocking its caller. Everything it observes is reported as event items
// pushed to a Sink, normally the client's message queue.
//
// # Lifecycle
//
//	Connecting ──handshake ok──▶ Open ──Close()──▶ Closing ──▶ Closed
//	     │                         │                              ▲
//	     └──handshake failed───────┴────────read loop exits───────┘
//
// The item stream of one Conn is always:
//
//	@open, payloads and errors..., @close   (handshake succeeded)
//	@error: <cause>, @close                 (handshake failed)
//
// # Read Errors
//
// Errors returned by the read loop are classified:
//
//   - Peer close frame: terminal, reported only by @close.
//   - Socket closed locally: terminal, reported as @error then @close.
//   - Connection lost (EOF without a close frame): terminal, @error then @close.
//   - Anything else: reported as @error; the loop pauses for the configured
//     retry interval and reads again, giving up after max_read_errors
//     consecutive failures.
//
// A panic inside the supervising goroutine is recovered and reported as
// @error followed by @close. Unset configuration fields take their defaults
// and max_read_errors is capped at 999, below gorilla/websocket's limit on
// repeated reads of a failed connection.
//
// # Thread Safety
//
// The socket handle is shared between the supervising goroutine (reads and
// teardown) and callers of Send and Close (writes). A single mutex guards the
// handle; it is held for one write or close call at a time and never across
// a read or a sleep.
package session
