// Package fetch dispatches one-shot HTTP requests on background goroutines.
//
// # Overview
//
// Fetch and Do validate their arguments, start the request on a goroutine,
// and immediately return a promise. The caller polls the promise on its own
// schedule:
//
//	p, err := d.Fetch("https://example.com/status", nil)
//	if err != nil {
//	    return err // malformed URL or header
//	}
//	...
//	resp, err := p.Poll()
//	switch {
//	case errors.Is(err, promise.ErrPending):
//	    // try again later
//	case err != nil:
//	    // request failed: unreachable host, timeout, malformed response
//	default:
//	    use(resp.Status, resp.Headers, resp.Body)
//	}
//
// Any HTTP status, including 4xx and 5xx, settles the promise as ready.
// Only transport failures settle it as failed. Every request is bounded by
// the configured timeout, so a promise never stays pending forever.
package fetch
