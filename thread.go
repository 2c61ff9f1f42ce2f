package amgo

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// ThreadFunc is the entry point of a thread started with CreateThread.
type ThreadFunc func(payload unsafe.Pointer)

// Thread is a goroutine started on behalf of foreign code.
type Thread struct {
	id   uint64
	done chan struct{}
}

var lastThreadID atomic.Uint64

// ID returns the thread's identifier. IDs start at 1 and are never reused
// within a process.
func (t *Thread) ID() uint64 { return t.id }

// Wait blocks until the thread's function has returned.
func (t *Thread) Wait() { <-t.done }

// Done returns a channel closed when the thread's function has returned.
func (t *Thread) Done() <-chan struct{} { return t.done }

// CreateThread runs fn(payload) on a new goroutine and returns a handle to it.
// A nil fn returns InvalidHandle.
func (c *Context) CreateThread(fn ThreadFunc, payload unsafe.Pointer) Handle {
	if fn == nil {
		return InvalidHandle
	}
	t := &Thread{id: lastThreadID.Add(1), done: make(chan struct{})}
	h := Store(c, t)
	if h == InvalidHandle {
		return InvalidHandle
	}
	go func() {
		defer close(t.done)
		fn(payload)
	}()
	return h
}

// WaitThread blocks until the thread finishes. Reports false for an unknown
// handle.
func (c *Context) WaitThread(h Handle) bool {
	t, ok := Get[Thread](c, h)
	if !ok {
		return false
	}
	t.Wait()
	return true
}

// ThreadID returns the identifier of the thread, or 0 for an unknown handle.
// It stays valid after the thread has finished, until ReleaseThread.
func (c *Context) ThreadID(h Handle) uint64 {
	if t, ok := Get[Thread](c, h); ok {
		return t.ID()
	}
	return 0
}

// ReleaseThread drops the registry's reference to the thread. The goroutine
// is not interrupted.
func (c *Context) ReleaseThread(h Handle) bool {
	return Remove[Thread](c, h)
}

// Sleep pauses the calling goroutine for ms milliseconds.
func Sleep(ms int32) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}
