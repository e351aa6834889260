// Package environment is the multi-context environment lifecycle left
// external to the core itself: many contexts share one
// environment-wide registry and, eventually, one thread pool
// dispatching evaluation work across them. Grounded on the teacher's
// internal/concurrency.WorkerPool (ID/Size/Jobs/Results/Ctx/Cancel
// shape) and ConcurrencyModule's sync.RWMutex-guarded map-of-pools
// pattern.
package environment

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"vex/internal/engine"
	"vex/internal/tracebuf"
	"vex/internal/txnstore"
)

// WorkerPool is the thread pool the core never dispatches to (no
// component here executes blocks yet, so there is nothing to schedule);
// it is constructed and sized here, matching the teacher's
// WorkerPool{ID,Size,Jobs,Results} shape, and stands ready for an
// evaluator built on top of this package to submit Jobs to.
type WorkerPool struct {
	ID      string
	Size    int
	Jobs    chan Job
	Results chan JobResult
}

// Job is a unit of dispatchable work; unused until an evaluator exists.
type Job struct {
	ID   string
	Data interface{}
}

// JobResult is a completed Job's outcome.
type JobResult struct {
	JobID string
	Err   error
}

// NewWorkerPool allocates (but does not start) a pool sized for size
// concurrent workers.
func NewWorkerPool(id string, size int) *WorkerPool {
	return &WorkerPool{
		ID:      id,
		Size:    size,
		Jobs:    make(chan Job, size),
		Results: make(chan JobResult, size),
	}
}

// handle is one context's registration: its engine.Context plus the
// collaborators bound to it.
type handle struct {
	ctx   *engine.Context
	trace *tracebuf.Buffer
	txn   *txnstore.Txn
}

// Environment owns a set of live contexts under one mutex, plus the
// (currently undispatched) worker pool that sits alongside them.
type Environment struct {
	mu       sync.RWMutex
	handles  map[*engine.Context]*handle
	Pool     *WorkerPool
}

// New creates an environment with a worker pool of the given size.
func New(poolSize int) *Environment {
	return &Environment{
		handles: make(map[*engine.Context]*handle),
		Pool:    NewWorkerPool("vex-env", poolSize),
	}
}

// Register adds c to the environment, binding its trace buffer and
// (optional) transaction root.
func (e *Environment) Register(c *engine.Context, trace *tracebuf.Buffer, txn *txnstore.Txn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handles[c] = &handle{ctx: c, trace: trace, txn: txn}
}

// Unregister drops c from the environment without touching its
// collaborators (the caller is expected to have already flushed them).
func (e *Environment) Unregister(c *engine.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handles, c)
}

// Contexts returns a snapshot of the currently live contexts.
func (e *Environment) Contexts() []*engine.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*engine.Context, 0, len(e.handles))
	for c := range e.handles {
		out = append(out, c)
	}
	return out
}

// Shutdown fans out across every registered context's txn and closes
// it, rolling back anything left open, using errgroup so one stuck
// rollback does not block the rest.
func (e *Environment) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	handles := make([]*handle, 0, len(e.handles))
	for _, h := range e.handles {
		handles = append(handles, h)
	}
	e.handles = make(map[*engine.Context]*handle)
	e.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error {
			if h.txn == nil {
				return nil
			}
			if err := h.txn.Rollback(); err != nil {
				return fmt.Errorf("environment: rollback during shutdown: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}
