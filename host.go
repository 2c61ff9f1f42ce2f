//go:build !ios && !android && (amd64 || arm64)

package amgo

import (
	"fmt"

	"github.com/obinnaokechukwu/amgo/internal/loader"
)

// HostLibrary is a native library opened so its functions can run as tasks.
type HostLibrary struct {
	name string
	path string
	lib  uintptr
}

// OpenHostLibrary loads the shared library called name, trying the given
// major versions first. name may also be a path to the library file.
func OpenHostLibrary(name string, versions ...int) (*HostLibrary, error) {
	lib, err := loader.Open(name, versions)
	if err != nil {
		return nil, err
	}
	// Best effort: the dynamic linker may have resolved it from its cache.
	path, _ := loader.Find(name, versions)
	return &HostLibrary{name: name, path: path, lib: lib}, nil
}

// Name returns the name the library was opened with.
func (l *HostLibrary) Name() string { return l.name }

// Path returns the file the library was found at, or "" when the dynamic
// linker located it on its own.
func (l *HostLibrary) Path() string { return l.path }

// Symbol resolves an exported symbol.
func (l *HostLibrary) Symbol(name string) (uintptr, error) {
	return loader.Symbol(l.lib, name)
}

// TaskFunc resolves symbol, which must have the signature
// void (*)(uintptr_t handle, void *payload), and wraps it as a TaskFunc.
func (l *HostLibrary) TaskFunc(symbol string) (TaskFunc, error) {
	fn, err := l.Symbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.name, err)
	}
	return ForeignTaskFunc(fn), nil
}

// ThreadFunc resolves symbol, which must have the signature
// void (*)(void *payload), and wraps it as a ThreadFunc.
func (l *HostLibrary) ThreadFunc(symbol string) (ThreadFunc, error) {
	fn, err := l.Symbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.name, err)
	}
	return ForeignThreadFunc(fn), nil
}

// Close unloads the library. Functions resolved from it must not be called
// afterwards.
func (l *HostLibrary) Close() error {
	if l.lib == 0 {
		return nil
	}
	err := loader.Close(l.lib)
	l.lib = 0
	return err
}
