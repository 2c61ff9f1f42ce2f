// Package handles provides the thread-safe tables that let native objects be
// referenced from foreign code by an opaque uintptr.
//
// Foreign code never holds a Go pointer. Instead an object is registered under
// its identity (the address of the pointer handed in) and the identity travels
// across the boundary. Every later call redeems the identity through a lookup
// that also checks the type the object was registered with, so a handle minted
// for one type can never be read back as another.
package handles

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrTypeConflict is returned by Registry.Store when the identity is already
// registered under a different type. This only happens when an address is
// reused while a stale entry is still live, i.e. a lifetime bug in the caller.
var ErrTypeConflict = errors.New("handles: identity already registered with a different type")

type entry struct {
	value any
	typ   reflect.Type
}

// Registry maps identities to type-tagged values.
//
// Reads (Lookup, Contains, HasType, Len) share a read lock; writes (Store,
// Remove, Clear) take the write lock. No user code runs while a lock is held.
//
// The zero value is ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries map[uintptr]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uintptr]entry)}
}

// Store registers v under id with type tag typ.
//
// Storing the same identity again with the same tag is a no-op and succeeds.
// Storing it with a different tag fails with ErrTypeConflict and leaves the
// existing entry untouched. id 0 and a nil typ are rejected.
//
// Thread-safe.
func (r *Registry) Store(id uintptr, v any, typ reflect.Type) error {
	if id == 0 || typ == nil {
		return fmt.Errorf("handles: invalid store of %v at %#x", typ, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[uintptr]entry)
	}
	if e, ok := r.entries[id]; ok {
		if e.typ == typ {
			return nil
		}
		return fmt.Errorf("%w: %#x holds %v, requested %v", ErrTypeConflict, id, e.typ, typ)
	}
	r.entries[id] = entry{value: v, typ: typ}
	return nil
}

// Lookup returns the value registered under id if its tag equals typ.
// A missing identity and a tag mismatch both report false.
//
// Thread-safe.
func (r *Registry) Lookup(id uintptr, typ reflect.Type) (any, bool) {
	if id == 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || e.typ != typ {
		return nil, false
	}
	return e.value, true
}

// Remove erases the entry under id if its tag equals typ, reporting whether
// anything was removed. Other references to the value are unaffected.
//
// Thread-safe.
func (r *Registry) Remove(id uintptr, typ reflect.Type) bool {
	if id == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.typ != typ {
		return false
	}
	delete(r.entries, id)
	return true
}

// Contains reports whether any entry exists under id, regardless of type.
//
// Thread-safe.
func (r *Registry) Contains(id uintptr) bool {
	if id == 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// HasType reports whether an entry exists under id with tag typ.
//
// Thread-safe.
func (r *Registry) HasType(id uintptr, typ reflect.Type) bool {
	if id == 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return ok && e.typ == typ
}

// Clear drops every entry and returns the values that were held, so the
// caller can finish tearing them down after the lock is released.
//
// Thread-safe.
func (r *Registry) Clear() []any {
	r.mu.Lock()
	old := r.entries
	r.entries = make(map[uintptr]entry)
	r.mu.Unlock()

	dropped := make([]any, 0, len(old))
	for _, e := range old {
		dropped = append(dropped, e.value)
	}
	return dropped
}

// Len returns the number of registered entries.
// Useful for debugging and testing leaks.
//
// Thread-safe.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
