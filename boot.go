package amgo

// Boot marks the context as booted and runs the boot hooks.
//
// It is safe to call concurrently and any number of times: exactly one caller
// observes the not booted -> booted transition, every other call is a no-op.
func (c *Context) Boot() {
	if !c.booted.CompareAndSwap(false, true) {
		return
	}
	for _, fn := range c.onBoot {
		fn()
	}
	c.logger.Info().Str("version", Version).Log("amgo: booted")
}

// Shutdown marks the context as not booted, drops every handle held by the
// handle registry and runs the shutdown hooks.
//
// Objects only reachable through the registry become unreachable. Pools
// created with CreatePool are closed without waiting for their queues to
// drain, so Shutdown may be called from a task callback.
// Task registries are left alone: tasks are destroyed explicitly.
//
// Safe to call concurrently; a call on a context that is not booted is a no-op.
// The context can be booted again afterwards.
func (c *Context) Shutdown() {
	if !c.booted.CompareAndSwap(true, false) {
		return
	}

	released, closed := c.releaseHandles()
	for _, fn := range c.onShutdown {
		fn()
	}
	c.logger.Info().
		Int("released", released).
		Int("pools_closed", closed).
		Log("amgo: shut down")
}

// IsBooted reports whether the context is booted.
func (c *Context) IsBooted() bool {
	return c.booted.Load()
}
