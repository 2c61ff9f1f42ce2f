package handles

import (
	"sync"
	"unsafe"
)

// Table owns values of a single kind, keyed by their own address.
//
// It backs the task registries: each kind of unit gets its own table, so no
// type tag is needed. Entries live until Remove or Clear; there is no
// automatic collection.
type Table[T any] struct {
	mu      sync.RWMutex
	entries map[uintptr]*T
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{entries: make(map[uintptr]*T)}
}

// Add takes a reference to v and returns its identity (0 for nil).
//
// Thread-safe.
func (t *Table[T]) Add(v *T) uintptr {
	if v == nil {
		return 0
	}
	id := uintptr(unsafe.Pointer(v))

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[uintptr]*T)
	}
	t.entries[id] = v
	return id
}

// Lookup returns the value registered under id, or nil.
//
// Thread-safe.
func (t *Table[T]) Lookup(id uintptr) *T {
	if id == 0 {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[id]
}

// Remove drops the table's reference to id and reports whether it was present.
// A value still referenced elsewhere (e.g. by a running worker) stays alive.
//
// Thread-safe.
func (t *Table[T]) Remove(id uintptr) bool {
	if id == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; !ok {
		return false
	}
	delete(t.entries, id)
	return true
}

// Clear drops every reference held by the table.
//
// Thread-safe.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[uintptr]*T)
}

// Len returns the number of entries.
//
// Thread-safe.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
