package deploy

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Executor runs background units of work. Go never blocks the caller; when a
// concurrency limit is set, excess units wait for a slot in their own goroutine.
type Executor struct {
	group  errgroup.Group
	slots  *semaphore.Weighted
	logger *slog.Logger
}

// NewExecutor returns an executor. maxConcurrent <= 0 means unbounded.
func NewExecutor(maxConcurrent int64, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{logger: logger.With("component", "executor")}
	if maxConcurrent > 0 {
		e.slots = semaphore.NewWeighted(maxConcurrent)
	}
	return e
}

// Go starts fn detached from ctx's cancellation; values such as the active
// span are kept.
func (e *Executor) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	e.group.Go(func() error {
		if e.slots != nil {
			if err := e.slots.Acquire(ctx, 1); err != nil {
				return err
			}
			defer e.slots.Release(1)
		}
		e.logger.Debug("task started", "task", name)
		err := fn(ctx)
		if err != nil {
			e.logger.Debug("task finished with error", "task", name, "err", err)
		}
		return err
	})
}

// Wait blocks until every started unit returns and reports the first failure.
// Callers must stop calling Go before Wait.
func (e *Executor) Wait() error {
	return e.group.Wait()
}
