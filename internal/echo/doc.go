// Package echo serves a WebSocket endpoint that sends every message back to
// its sender. It backs the CLI's echo command and the connection tests.
package echo
