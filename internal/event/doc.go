// Package event defines the items carried on a client's message queue.
//
// # Overview
//
// A connection produces two kinds of items: text payloads received from the
// peer, and lifecycle events (open, close, error). Both travel on the same
// ordered queue so the caller observes them in causal order.
//
// # Encoding
//
// Item is a tagged variant. For callers that can only consume strings, Encode
// renders control items with a reserved "@" prefix:
//
//	@open
//	@close
//	@error: dial tcp 127.0.0.1:1: connect: connection refused
//
// Payloads are passed through verbatim. A payload that itself starts with "@"
// cannot be told apart from a control item in the string form; callers that
// need certainty should consume Item values directly.
package event
