// ABOUTME: Unbounded multi-producer, single-consumer queue of event items
// ABOUTME: Poll never blocks; per-producer order is preserved

package queue

import (
	"container/list"
	"sync"

	"github.com/2389/wspoll/internal/event"
)

// Queue is a thread-safe FIFO of event items. Items pushed by the same
// goroutine are observed by the consumer in push order. The lock is held
// only for the list operation itself.
type Queue struct {
	mu    sync.Mutex
	items *list.List
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{items: list.New()}
}

// Push appends an item to the back of the queue.
func (q *Queue) Push(it event.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items.PushBack(it)
}

// Poll removes and returns the oldest item. The second return value is false
// when the queue is empty.
func (q *Queue) Poll() (event.Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.items.Front()
	if front == nil {
		return event.Item{}, false
	}

	it, _ := q.items.Remove(front).(event.Item)
	return it, true
}

// Len returns the number of items waiting to be polled.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Drain removes and returns every queued item in order.
func (q *Queue) Drain() []event.Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]event.Item, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		it, _ := e.Value.(event.Item)
		out = append(out, it)
	}
	q.items.Init()
	return out
}
