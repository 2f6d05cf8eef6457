// ABOUTME: Write-once result cell polled without blocking
// ABOUTME: Hands a one-shot background result to a cooperative caller

package promise

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrPending is returned by Poll until the promise is settled.
var ErrPending = errors.New("promise pending")

// errRejected stands in for a nil rejection reason.
var errRejected = errors.New("promise rejected")

// State is the settlement state of a promise.
type State int

const (
	// Pending means no result has been written yet.
	Pending State = iota
	// Ready means the promise holds a value.
	Ready
	// Failed means the promise holds an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Promise holds at most one outcome: a value or an error. Only the first
// Resolve or Reject takes effect.
type Promise[T any] struct {
	ID string

	once sync.Once
	done chan struct{}

	// written once before done is closed
	value T
	err   error
}

// New creates a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Resolve settles the promise with v. It reports whether this call settled it.
func (p *Promise[T]) Resolve(v T) bool {
	settled := false
	p.once.Do(func() {
		p.value = v
		close(p.done)
		settled = true
	})
	return settled
}

// Reject settles the promise with err. It reports whether this call settled it.
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = errRejected
	}
	settled := false
	p.once.Do(func() {
		p.err = err
		close(p.done)
		settled = true
	})
	return settled
}

// Poll returns the outcome without blocking. It returns ErrPending until the
// promise settles, then the same value or error on every call.
func (p *Promise[T]) Poll() (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// State reports whether the promise is pending, ready, or failed.
func (p *Promise[T]) State() State {
	select {
	case <-p.done:
		if p.err != nil {
			return Failed
		}
		return Ready
	default:
		return Pending
	}
}

// Done is closed when the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}
