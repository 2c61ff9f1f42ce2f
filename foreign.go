//go:build !ios && !android && (amd64 || arm64)

package amgo

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ForeignTaskFunc wraps a C function pointer of type
//
//	void (*)(uintptr_t handle, void *payload)
//
// as a TaskFunc. The pointer is called through purego, so no cgo is needed.
// A zero fn yields nil.
func ForeignTaskFunc(fn uintptr) TaskFunc {
	if fn == 0 {
		return nil
	}
	return func(h Handle, payload unsafe.Pointer) {
		purego.SyscallN(fn, uintptr(h), uintptr(payload))
	}
}

// ForeignThreadFunc wraps a C function pointer of type void (*)(void *payload)
// as a ThreadFunc. A zero fn yields nil.
func ForeignThreadFunc(fn uintptr) ThreadFunc {
	if fn == 0 {
		return nil
	}
	return func(payload unsafe.Pointer) {
		purego.SyscallN(fn, uintptr(payload))
	}
}

// NewForeignCallback exports fn as a C function pointer with the TaskFunc
// calling convention, for hosts that want to hand Go code to a native engine.
//
// purego can only create a limited number of callbacks and never frees them;
// create them once and reuse the pointer.
func NewForeignCallback(fn TaskFunc) uintptr {
	return purego.NewCallback(func(_ purego.CDecl, h uintptr, payload unsafe.Pointer) {
		fn(Handle(h), payload)
	})
}

// The set-ready trampoline is registered once, to stay well below purego's
// callback limit, and routes each handle to the context whose task registry
// holds it. Task handles are addresses of live units, so at most one
// registered context can own a given handle.
var (
	trampolineOnce     sync.Once
	setReadyTrampoline uintptr
	trampolineMu       sync.RWMutex
	trampolineContexts = make(map[*Context]struct{})
)

// SetReadyCallback registers c with the shared set-ready trampoline and returns
// it: a C function pointer of type void (*)(uintptr_t) that marks the task
// with that handle ready, plain or awaitable, in whichever registered context
// owns it. It lets native callbacks, which cannot call Go methods, finish a
// task by calling back through the boundary.
//
// Every call returns the same pointer. Handles no registered context owns are
// ignored. Call ReleaseReadyCallback when c is no longer used.
func SetReadyCallback(c *Context) uintptr {
	if c != nil {
		trampolineMu.Lock()
		trampolineContexts[c] = struct{}{}
		trampolineMu.Unlock()
	}

	trampolineOnce.Do(func() {
		setReadyTrampoline = purego.NewCallback(func(_ purego.CDecl, h uintptr) {
			routeSetReady(Handle(h))
		})
	})
	return setReadyTrampoline
}

// ReleaseReadyCallback unregisters c from the set-ready trampoline.
func ReleaseReadyCallback(c *Context) {
	trampolineMu.Lock()
	delete(trampolineContexts, c)
	trampolineMu.Unlock()
}

func routeSetReady(h Handle) {
	trampolineMu.RLock()
	defer trampolineMu.RUnlock()
	for c := range trampolineContexts {
		if c.tasks.Lookup(uintptr(h)) != nil {
			c.SetTaskReady(h)
			return
		}
		if c.awaitables.Lookup(uintptr(h)) != nil {
			c.SetAwaitableTaskReady(h)
			return
		}
	}
}
