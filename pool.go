package amgo

import (
	"runtime"
	"sync"
)

// Pool runs submitted tasks on a fixed set of worker goroutines.
//
// Each task added is run exactly once, at some later time, on some worker.
// The pool holds its own reference to a queued or running task, so dropping
// the task from its registry does not cancel it.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Task
	active  int
	closed  bool
	threads int
	owned   bool
	logger  *Logger
	wg      sync.WaitGroup
}

// NewPool starts a pool with the given number of workers.
// If threads <= 0, runtime.NumCPU() workers are started.
func NewPool(threads int) *Pool {
	return newPool(threads, nil)
}

func newPool(threads int, logger *Logger) *Pool {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	p := &Pool{threads: threads, logger: logger}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go p.worker(i)
	}
	logger.Debug().Int("threads", threads).Log("amgo: pool started")
	return p
}

// AddTask queues t for execution.
func (p *Pool) AddTask(t Task) error {
	if t == nil {
		return ErrNilTask
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, t)
	p.cond.Signal()
	return nil
}

// ThreadCount returns the number of workers.
func (p *Pool) ThreadCount() int {
	return p.threads
}

// IsRunning reports whether the pool still accepts tasks.
func (p *Pool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// HasTasks reports whether any task is queued or executing.
func (p *Pool) HasTasks() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) > 0 || p.active > 0
}

// Close stops accepting tasks, runs every task already queued and waits for
// the workers to exit. Safe to call more than once, but not from a task
// running on the same pool.
func (p *Pool) Close() {
	first := p.stop()
	p.wg.Wait()
	if first {
		p.logger.Debug().Int("threads", p.threads).Log("amgo: pool closed")
	}
}

// stop stops accepting tasks and wakes the workers, which run what is left in
// the queue and exit. It does not wait for them, so it may be called from a
// task running on p. Reports whether this call closed the pool.
func (p *Pool) stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	p.cond.Broadcast()
	return true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		p.run(id, t)

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}
}

func (p *Pool) run(id int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Err().
				Int("worker", id).
				Any("panic", r).
				Log("amgo: task panicked")
		}
	}()
	t.Run()
}

// CreatePool starts a pool and stores it in the handle registry.
// The pool is closed by DestroyPool, ClearHandles or Shutdown.
func (c *Context) CreatePool(threads int) Handle {
	p := newPool(threads, c.logger)
	p.owned = true
	h := Store(c, p)
	if h == InvalidHandle {
		p.Close()
	}
	return h
}

// DestroyPool removes the pool from the handle registry and closes it, which
// waits for queued tasks to finish. Reports false for an unknown handle.
// Like Close, it must not be called from a task running on that pool; use
// Shutdown or ClearHandles there.
func (c *Context) DestroyPool(h Handle) bool {
	p, ok := Get[Pool](c, h)
	if !ok || !Remove[Pool](c, h) {
		return false
	}
	p.Close()
	return true
}

// PoolThreadCount returns the worker count of the pool, or 0.
func (c *Context) PoolThreadCount(h Handle) int {
	if p, ok := Get[Pool](c, h); ok {
		return p.ThreadCount()
	}
	return 0
}

// PoolIsRunning reports whether the pool exists and accepts tasks.
func (c *Context) PoolIsRunning(h Handle) bool {
	if p, ok := Get[Pool](c, h); ok {
		return p.IsRunning()
	}
	return false
}

// PoolHasTasks reports whether the pool exists and has queued or executing tasks.
func (c *Context) PoolHasTasks(h Handle) bool {
	if p, ok := Get[Pool](c, h); ok {
		return p.HasTasks()
	}
	return false
}
