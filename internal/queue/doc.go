// Package queue provides the ordered message channel between background
// connection goroutines and a single polling consumer.
//
// Producers call Push from any goroutine; the consumer drains one item per
// Poll call without ever blocking. The queue is unbounded: producers are
// never throttled by a slow consumer.
package queue
