// Package async runs a fixed set of tasks with bounded concurrency.
package async

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pricing-ingest/internal/telemetry"
)

// RunOverride, when set, replaces the goroutine launch. Tests use it to run
// tasks inline.
var RunOverride func(fn func())

// Group fans tasks out and waits for all of them. A nil error from every
// task is the normal case; the first error is returned by Wait but does not
// cancel the other tasks.
type Group struct {
	ctx      context.Context
	g        errgroup.Group
	inFlight atomic.Int64
	overErr  atomic.Pointer[error]
}

// NewGroup returns a Group allowing at most limit concurrent tasks.
// limit <= 0 means no bound.
func NewGroup(ctx context.Context, limit int) *Group {
	grp := &Group{ctx: ctx}
	if limit > 0 {
		grp.g.SetLimit(limit)
	}
	slog.Debug("Async group initialized", "concurrent_limit", limit)
	return grp
}

// Go runs fn, blocking while the group is at its limit.
func (grp *Group) Go(fn func(ctx context.Context) error) {
	task := func() error {
		telemetry.RecordTasksInFlight(grp.ctx, grp.inFlight.Add(1))
		defer func() {
			telemetry.RecordTasksInFlight(grp.ctx, grp.inFlight.Add(-1))
		}()
		return fn(grp.ctx)
	}
	if RunOverride != nil {
		RunOverride(func() {
			if err := task(); err != nil {
				grp.overErr.CompareAndSwap(nil, &err)
			}
		})
		return
	}
	grp.g.Go(task)
}

// Wait blocks until every task has returned and reports the first error.
func (grp *Group) Wait() error {
	err := grp.g.Wait()
	if err == nil {
		if p := grp.overErr.Load(); p != nil {
			err = *p
		}
	}
	return err
}

// QueueDepth returns the number of tasks currently running. The same value
// is exported as the pricing.tasks.in_flight gauge.
func (grp *Group) QueueDepth() int64 {
	return grp.inFlight.Load()
}
