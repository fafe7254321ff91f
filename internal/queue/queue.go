// Package queue implements the bounded FIFO with blocking put/get and a
// close signal that sits between pipeline stages.
package queue

import (
	"context"
	"sync"
)

// A Queue is a bounded FIFO of items of type T, shared between one producer
// and one consumer goroutine. Put blocks while the queue is full; Get blocks
// while it is empty. After Close, Get continues to drain whatever remains
// before reporting the queue closed.
//
// Producers must call Close exactly once when they have no more items to
// put. Queue is built on a buffered channel, following the same
// buffered-channel-plus-close-and-drain discipline the rest of this
// codebase uses for receiver fan-out (see internal/media.Flow in the
// reference implementation this was adapted from).
type Queue[T any] struct {
	ch chan T

	closeOnce sync.Once
}

// New returns a Queue with the given fixed capacity.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Put inserts an item, blocking if the queue is full. Put must not be called
// after Close.
func (q *Queue[T]) Put(item T) {
	q.ch <- item
}

// Get removes and returns the next item. ok is false once the queue is
// closed and fully drained.
func (q *Queue[T]) Get() (item T, ok bool) {
	item, ok = <-q.ch
	return
}

// Close signals that no more items will be put. Safe to call more than
// once; only the first call has effect.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
}

// PutContext is Put, but returns ctx.Err() instead of blocking forever if
// ctx is canceled before there is room in the queue. Used by producers so
// that a cancelled downstream stage (one that has stopped draining) cannot
// wedge an upstream stage forever.
func (q *Queue[T]) PutContext(ctx context.Context, item T) error {
	select {
	case q.ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetContext is Get, but also returns early with ctx.Err() if ctx is
// canceled before an item is available.
func (q *Queue[T]) GetContext(ctx context.Context) (item T, ok bool, err error) {
	select {
	case item, ok = <-q.ch:
		return item, ok, nil
	case <-ctx.Done():
		return item, false, ctx.Err()
	}
}
