package amgo

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// TaskFunc is the callback wrapped by a task unit.
//
// It receives the unit's own handle, so the callback can mark itself ready,
// and the opaque payload given at creation. The payload belongs to the caller
// and is never inspected.
type TaskFunc func(h Handle, payload unsafe.Pointer)

// Task is the unit of work a Pool consumes.
type Task interface {
	// Run executes the work. It is called exactly once per submission.
	Run()
	// Ready reports whether the work declared itself finished.
	Ready() bool
}

// TaskUnit wraps a callback and payload into a poolable unit of work.
//
// Readiness starts false and only becomes true when someone calls SetReady,
// normally the callback itself: "ready" means the work finished, not that
// Run returned.
type TaskUnit struct {
	fn      TaskFunc
	payload unsafe.Pointer
	ready   atomic.Bool
}

// NewTaskUnit creates a task unit. A nil fn yields a unit whose Run does
// nothing.
func NewTaskUnit(fn TaskFunc, payload unsafe.Pointer) *TaskUnit {
	return &TaskUnit{fn: fn, payload: payload}
}

// Handle returns the unit's identity, as passed to its callback.
func (t *TaskUnit) Handle() Handle { return identity(t) }

// Run invokes the callback. It never marks the unit ready.
func (t *TaskUnit) Run() {
	if t.fn != nil {
		t.fn(t.Handle(), t.payload)
	}
}

// Ready reports whether SetReady has been called. Non-blocking.
func (t *TaskUnit) Ready() bool { return t.ready.Load() }

// SetReady marks the unit ready. Idempotent.
func (t *TaskUnit) SetReady() { t.ready.Store(true) }

// AwaitableTaskUnit is a TaskUnit that callers can block on until it is
// marked ready.
//
// A unit whose callback never calls SetReady blocks Await forever. Callers
// that need a bound must use AwaitFor. Units must be created with
// NewAwaitableTaskUnit.
type AwaitableTaskUnit struct {
	fn      TaskFunc
	payload unsafe.Pointer
	ready   atomic.Bool

	once sync.Once
	done chan struct{}
}

// NewAwaitableTaskUnit creates an awaitable task unit.
func NewAwaitableTaskUnit(fn TaskFunc, payload unsafe.Pointer) *AwaitableTaskUnit {
	return &AwaitableTaskUnit{fn: fn, payload: payload, done: make(chan struct{})}
}

// Handle returns the unit's identity, as passed to its callback.
func (t *AwaitableTaskUnit) Handle() Handle { return identity(t) }

// Run invokes the callback. It never marks the unit ready.
func (t *AwaitableTaskUnit) Run() {
	if t.fn != nil {
		t.fn(t.Handle(), t.payload)
	}
}

// Ready reports whether SetReady has been called. Non-blocking.
func (t *AwaitableTaskUnit) Ready() bool { return t.ready.Load() }

// SetReady marks the unit ready and releases every blocked waiter.
// Idempotent.
func (t *AwaitableTaskUnit) SetReady() {
	t.ready.Store(true)
	t.once.Do(func() { close(t.done) })
}

// Await blocks until the unit is ready. It returns immediately if it already is.
func (t *AwaitableTaskUnit) Await() {
	for !t.Ready() {
		<-t.done
	}
}

// AwaitFor blocks until the unit is ready or d elapses, whichever comes first,
// and reports Ready at return. A non-positive d polls without blocking.
func (t *AwaitableTaskUnit) AwaitFor(d time.Duration) bool {
	if t.Ready() || d <= 0 {
		return t.Ready()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	for !t.Ready() {
		select {
		case <-t.done:
		case <-timer.C:
			return t.Ready()
		}
	}
	return true
}
