// Package scheduler provides a minimal FIFO implementation of the
// reactor's Scheduler collaborator interface, standing in for "the
// external actor scheduler" in tests and examples that don't need the
// full actor runtime.
package scheduler

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/aimoonchen/actor-framework"
)

// FIFO is a goroutine-safe, strictly-ordered task queue backed by
// github.com/eapache/queue's ring buffer, so Pop never shifts the
// remaining elements the way a slice-based FIFO would. It satisfies
// reactor.Scheduler.
type FIFO struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewFIFO returns an empty scheduler.
func NewFIFO() *FIFO {
	return &FIFO{q: queue.New()}
}

// Enqueue appends task to the tail of the queue. Safe for concurrent
// callers.
func (f *FIFO) Enqueue(task reactor.Resumable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.q.Add(task)
}

// Len reports the number of queued tasks.
func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.q.Length()
}

// Pop removes and returns the head of the queue, or nil if empty.
func (f *FIFO) Pop() reactor.Resumable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.q.Length() == 0 {
		return nil
	}
	v := f.q.Peek()
	f.q.Remove()
	return v.(reactor.Resumable)
}

// Drain pops every queued task in FIFO order and calls fn on each.
func (f *FIFO) Drain(fn func(task reactor.Resumable)) {
	for {
		v := f.Pop()
		if v == nil {
			return
		}
		fn(v)
	}
}
