package amgo

import (
	"math"
	"time"
	"unsafe"
)

// CreateTask allocates a TaskUnit, registers it and returns its handle.
// The registry is the unit's only owner until it is submitted.
func (c *Context) CreateTask(fn TaskFunc, payload unsafe.Pointer) Handle {
	return Handle(c.tasks.Add(NewTaskUnit(fn, payload)))
}

// DestroyTask drops the registry's reference to the task. A unit already
// handed to a pool still runs; later lookups of h fail.
func (c *Context) DestroyTask(h Handle) bool {
	return c.tasks.Remove(uintptr(h))
}

// TaskReady reports whether the task exists and has been marked ready.
func (c *Context) TaskReady(h Handle) bool {
	if t := c.tasks.Lookup(uintptr(h)); t != nil {
		return t.Ready()
	}
	return false
}

// SetTaskReady marks the task ready. Unknown handles are ignored.
func (c *Context) SetTaskReady(h Handle) {
	if t := c.tasks.Lookup(uintptr(h)); t != nil {
		t.SetReady()
	}
}

// SubmitTask hands the task to the pool. It reports false, doing nothing,
// if either handle is unknown or the pool is closed.
func (c *Context) SubmitTask(pool, task Handle) bool {
	t := c.tasks.Lookup(uintptr(task))
	if t == nil {
		return false
	}
	if !c.submit(pool, t) {
		return false
	}
	c.submitted.Add(1)
	return true
}

// CreateAwaitableTask allocates an AwaitableTaskUnit, registers it and
// returns its handle.
func (c *Context) CreateAwaitableTask(fn TaskFunc, payload unsafe.Pointer) Handle {
	return Handle(c.awaitables.Add(NewAwaitableTaskUnit(fn, payload)))
}

// DestroyAwaitableTask drops the registry's reference to the task.
// Goroutines already blocked in AwaitTask keep their own reference.
func (c *Context) DestroyAwaitableTask(h Handle) bool {
	return c.awaitables.Remove(uintptr(h))
}

// AwaitableTaskReady reports whether the task exists and has been marked ready.
func (c *Context) AwaitableTaskReady(h Handle) bool {
	if t := c.awaitables.Lookup(uintptr(h)); t != nil {
		return t.Ready()
	}
	return false
}

// SetAwaitableTaskReady marks the task ready and wakes its waiters.
// Unknown handles are ignored.
func (c *Context) SetAwaitableTaskReady(h Handle) {
	if t := c.awaitables.Lookup(uintptr(h)); t != nil {
		t.SetReady()
	}
}

// AwaitTask blocks until the task is ready. Unknown handles return at once.
func (c *Context) AwaitTask(h Handle) {
	if t := c.awaitables.Lookup(uintptr(h)); t != nil {
		t.Await()
	}
}

// maxAwaitMillis is the longest timeout a time.Duration can hold.
const maxAwaitMillis = uint64(math.MaxInt64 / int64(time.Millisecond))

// AwaitTaskFor blocks until the task is ready or ms milliseconds elapse and
// reports whether it is ready. Timeouts too long for a time.Duration, such as
// math.MaxUint64, wait without a bound. Unknown handles return false at once.
func (c *Context) AwaitTaskFor(h Handle, ms uint64) bool {
	t := c.awaitables.Lookup(uintptr(h))
	if t == nil {
		return false
	}
	if ms > maxAwaitMillis {
		t.Await()
		return true
	}
	return t.AwaitFor(time.Duration(ms) * time.Millisecond)
}

// SubmitAwaitableTask hands the awaitable task to the pool. It reports false,
// doing nothing, if either handle is unknown or the pool is closed.
func (c *Context) SubmitAwaitableTask(pool, task Handle) bool {
	t := c.awaitables.Lookup(uintptr(task))
	if t == nil {
		return false
	}
	if !c.submit(pool, t) {
		return false
	}
	c.submittedAwaitable.Add(1)
	return true
}

// TaskCount returns the number of registered tasks.
func (c *Context) TaskCount() int { return c.tasks.Len() }

// AwaitableTaskCount returns the number of registered awaitable tasks.
func (c *Context) AwaitableTaskCount() int { return c.awaitables.Len() }

// submit runs with no registry lock held, so a task that touches the
// registries from its worker cannot deadlock against the submitter.
func (c *Context) submit(pool Handle, t Task) bool {
	p, ok := Get[Pool](c, pool)
	if !ok {
		return false
	}
	return p.AddTask(t) == nil
}
