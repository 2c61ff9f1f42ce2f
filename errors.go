package amgo

import (
	"errors"

	"github.com/obinnaokechukwu/amgo/internal/handles"
	"github.com/obinnaokechukwu/amgo/internal/loader"
)

// Common errors.
//
// Boundary operations (Store, Get, SubmitTask, ...) never return these: a bad
// handle is reported through a sentinel value instead. They surface only from
// Go-side constructors and from pools and host libraries.
var (
	// ErrPoolClosed indicates a task was added to a pool after Close.
	ErrPoolClosed = errors.New("amgo: pool is closed")

	// ErrNilTask indicates a nil task was added to a pool.
	ErrNilTask = errors.New("amgo: task is nil")

	// ErrTypeConflict indicates an identity is already registered with a
	// different type. Store logs it and returns InvalidHandle.
	ErrTypeConflict = handles.ErrTypeConflict

	// ErrLibraryNotFound indicates a host library could not be located.
	ErrLibraryNotFound = loader.ErrLibraryNotFound

	// ErrSymbolNotFound indicates a symbol is missing from a host library.
	ErrSymbolNotFound = loader.ErrSymbolNotFound
)
