// Package limiter provides the capacity token that bounds how many
// offloaded calls may run at once.
//
// A [Limiter] is a counting semaphore with a dynamically adjustable
// capacity. Waiters are admitted in arrival order. Limiters are handed
// to the worker facility either directly or through the named registry
// in the root offload package; the limiter itself knows nothing about
// either.
package limiter

import (
	"container/list"
	"context"
	"sync"
)

// Limiter bounds concurrent borrowers. Construct with [New]; the zero
// value has a capacity of zero and admits nothing.
//
// A Limiter must not be copied after first use.
type Limiter struct {
	mu       sync.Mutex
	capacity int64
	borrowed int64
	waiters  list.List // of chan struct{}, oldest first
}

// New returns a Limiter bounded at capacity. It panics if capacity is
// less than one: a bound that can never admit work is always a caller
// bug, not a runtime condition.
func New(capacity int64) *Limiter {
	if capacity < 1 {
		panic("limiter: capacity must be at least 1")
	}

	return &Limiter{capacity: capacity}
}

// Acquire borrows one slot, blocking until a slot frees up or ctx is
// done. On failure the Limiter is left unchanged and ctx.Err() is
// returned.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.borrowed < l.capacity {
		l.borrowed++
		l.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	elem := l.waiters.PushBack(ready)
	l.mu.Unlock()

	select {
	case <-ready:
		return nil

	case <-ctx.Done():
		err := ctx.Err()
		l.mu.Lock()
		select {
		case <-ready:
			// A slot was handed over after cancellation hit. Keep it
			// rather than trying to fix up the queue.
			err = nil
		default:
			l.waiters.Remove(elem)
		}
		l.mu.Unlock()

		return err
	}
}

// TryAcquire borrows a slot only if one is immediately free.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.borrowed < l.capacity {
		l.borrowed++
		return true
	}

	return false
}

// Release returns a borrowed slot, handing it straight to the oldest
// waiter if one exists. It panics when nothing is borrowed.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.borrowed < 1 {
		panic("limiter: mismatched Release call")
	}

	waiter := l.waiters.Front()

	// No waiter to hand the slot to, or the capacity shrank and the
	// borrow count has to drain below the new bound first.
	if waiter == nil || l.borrowed > l.capacity {
		l.borrowed--
		return
	}

	l.waiters.Remove(waiter)
	close(waiter.Value.(chan struct{}))
}

// Capacity reports the current bound.
func (l *Limiter) Capacity() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.capacity
}

// SetCapacity changes the bound at run time. Growing it wakes as many
// waiters as now fit; shrinking it lets borrowers drain until the count
// falls below the new bound. Panics if capacity is less than one.
func (l *Limiter) SetCapacity(capacity int64) {
	if capacity < 1 {
		panic("limiter: capacity must be at least 1")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if capacity > l.capacity {
		for l.borrowed < capacity && l.waiters.Len() > 0 {
			l.borrowed++
			next := l.waiters.Front()
			l.waiters.Remove(next)
			close(next.Value.(chan struct{}))
		}
	}

	l.capacity = capacity
}

// Borrowed reports how many slots are currently out.
func (l *Limiter) Borrowed() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.borrowed
}

// Waiting reports how many callers are blocked in [Limiter.Acquire].
func (l *Limiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.waiters.Len()
}
