// Package amgo is the boundary layer that lets foreign code, which only holds
// opaque numeric handles, share reference-counted native objects and dispatch
// work onto worker pools without use-after-free, double-free or type confusion.
//
// Two kinds of state live behind a Context:
//
//   - A handle registry mapping an object's identity to the object and the
//     type it was stored as. Store, Get, Remove and HasType are type-checked;
//     a handle used with the wrong type behaves exactly like an unknown handle.
//   - Task registries owning TaskUnit and AwaitableTaskUnit values created on
//     behalf of the caller, which are then submitted to a Pool by handle.
//
// Boundary operations never panic or return errors on bad handles. An unknown,
// stale or mistyped handle yields InvalidHandle, nil or false.
//
// Most programs use the process-wide context returned by Default, bracketed by
// Boot and Shutdown. Tests and embedders can build isolated contexts with New.
package amgo

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/obinnaokechukwu/amgo/internal/handles"
)

// Version is the amgo library version.
const Version = "0.3.0"

// Context holds the registries and lifecycle flag of one boundary.
// All methods are safe for concurrent use.
type Context struct {
	logger *Logger

	objects    *handles.Registry
	tasks      *handles.Table[TaskUnit]
	awaitables *handles.Table[AwaitableTaskUnit]

	booted     atomic.Bool
	onBoot     []func()
	onShutdown []func()

	submitted          atomic.Uint64
	submittedAwaitable atomic.Uint64
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithBootHook registers fn to run once each time the context transitions
// from not booted to booted.
func WithBootHook(fn func()) Option {
	return func(c *Context) {
		if fn != nil {
			c.onBoot = append(c.onBoot, fn)
		}
	}
}

// WithShutdownHook registers fn to run once each time the context transitions
// from booted to not booted, after the handle registry has been cleared.
func WithShutdownHook(fn func()) Option {
	return func(c *Context) {
		if fn != nil {
			c.onShutdown = append(c.onShutdown, fn)
		}
	}
}

// New creates an isolated context. The returned context is not booted.
func New(opts ...Option) *Context {
	c := &Context{
		logger:     NewLogger(os.Stderr, LogWarning),
		objects:    handles.NewRegistry(),
		tasks:      handles.NewTable[TaskUnit](),
		awaitables: handles.NewTable[AwaitableTaskUnit](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the context's logger (possibly nil).
func (c *Context) Logger() *Logger {
	return c.logger
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// Default returns the process-wide context, creating it on first use.
// This is the single initialization point for the package-level functions.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = New()
	})
	return defaultCtx
}

// Boot boots the process-wide context. See Context.Boot.
func Boot() { Default().Boot() }

// Shutdown shuts down the process-wide context. See Context.Shutdown.
func Shutdown() { Default().Shutdown() }

// IsBooted reports whether the process-wide context is booted.
func IsBooted() bool { return Default().IsBooted() }
