// Package client is the caller-facing WebSocket facade.
//
// # Overview
//
// A Client lets a cooperative, single-threaded caller use a WebSocket
// connection without ever blocking. Connect returns as soon as a supervising
// goroutine is started; everything the connection observes is queued and
// retrieved one item at a time with Poll.
//
// # Usage
//
//	c := client.New(cfg.Session, logger)
//	if err := c.Connect("ws://127.0.0.1:8080/live", nil); err != nil {
//	    return err // malformed URL or headers
//	}
//	for {
//	    for {
//	        msg, ok := c.Poll()
//	        if !ok {
//	            break
//	        }
//	        handle(msg) // "@open", "@close", "@error: ...", or a payload
//	    }
//	    doOtherWork()
//	}
//
// # Replacing Connections
//
// Calling Connect while a connection exists abandons the old one: its socket
// is closed and it produces no further items. Items it queued before being
// abandoned stay in the queue.
//
// # Errors
//
// Argument errors (ErrInvalidURL, ErrInvalidHeader) are returned synchronously
// by Connect. Failures in the background are only ever reported through Poll.
// Send returns ErrNotConnected when there is no open connection.
package client
