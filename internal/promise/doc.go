// Package promise provides a single-slot result cell written once by a
// background goroutine and polled by the caller.
//
// # Overview
//
// A Promise starts Pending and settles exactly once, to Ready with a value
// or to Failed with an error. Later Resolve or Reject calls are ignored and
// report false. Poll never blocks: it returns ErrPending until settlement,
// then the same outcome on every call.
//
//	p := promise.New[string]()
//	go func() { p.Resolve("done") }()
//	for {
//		v, err := p.Poll()
//		if errors.Is(err, promise.ErrPending) {
//			continue
//		}
//		_ = v
//		break
//	}
//
// Done exposes a channel closed at settlement for callers that can block.
package promise
