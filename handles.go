package amgo

import (
	"reflect"
	"unsafe"
)

// Handle is an opaque value handed to foreign code in place of a Go pointer.
// It can only be redeemed through a Context; it is never dereferenced.
type Handle uintptr

// InvalidHandle is never assigned to a live object.
const InvalidHandle Handle = 0

// IsValid reports whether h is not InvalidHandle. It says nothing about
// whether h is currently registered; use Contains or HasType for that.
func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

func identity[T any](ref *T) Handle {
	return Handle(uintptr(unsafe.Pointer(ref)))
}

// Store registers ref in c's handle registry under the type T and returns its
// handle. The registry keeps ref alive until Remove, ClearHandles or Shutdown.
//
// Storing the same object again as T returns the same handle. If the identity
// is already registered as a different type, Store refuses, logs a warning and
// returns InvalidHandle: this happens when an address is reused while a stale
// entry is still live, which is a lifetime bug in the caller.
//
// Pointers to zero-sized values may share an address, so storing them under
// different types collides by the same rule.
func Store[T any](c *Context, ref *T) Handle {
	if c == nil || ref == nil {
		return InvalidHandle
	}
	h := identity(ref)
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if err := c.objects.Store(uintptr(h), ref, typ); err != nil {
		c.logger.Warning().
			Err(err).
			Str("type", typ.String()).
			Log("amgo: refusing to store handle")
		return InvalidHandle
	}
	return h
}

// Get resolves h to the object stored as T. It reports false if h is unknown
// or was stored as a different type; the two cases are indistinguishable.
func Get[T any](c *Context, h Handle) (*T, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.objects.Lookup(uintptr(h), reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, false
	}
	ref, ok := v.(*T)
	return ref, ok
}

// Remove drops the registry's reference to the object stored as T under h and
// reports whether it did. Other references to the object keep it alive.
func Remove[T any](c *Context, h Handle) bool {
	if c == nil {
		return false
	}
	return c.objects.Remove(uintptr(h), reflect.TypeOf((*T)(nil)).Elem())
}

// HasType reports whether h is registered as T.
func HasType[T any](c *Context, h Handle) bool {
	if c == nil {
		return false
	}
	return c.objects.HasType(uintptr(h), reflect.TypeOf((*T)(nil)).Elem())
}

// Contains reports whether h is registered, whatever its type.
func (c *Context) Contains(h Handle) bool {
	return c.objects.Contains(uintptr(h))
}

// StoredCount returns the number of objects in the handle registry.
func (c *Context) StoredCount() int {
	return c.objects.Len()
}

// ClearHandles drops every reference held by the handle registry.
// It is meant for teardown; Shutdown calls it. Pools created with CreatePool
// are closed, since nothing else can reach them: they stop accepting tasks and
// their workers exit once the queue is drained. ClearHandles does not wait for
// that, so it may be called from a task callback.
func (c *Context) ClearHandles() {
	released, closed := c.releaseHandles()
	c.logger.Debug().
		Int("released", released).
		Int("pools_closed", closed).
		Log("amgo: handle registry cleared")
}

func (c *Context) releaseHandles() (released, closed int) {
	dropped := c.objects.Clear()
	for _, v := range dropped {
		if p, ok := v.(*Pool); ok && p.owned && p.stop() {
			closed++
		}
	}
	return len(dropped), closed
}
