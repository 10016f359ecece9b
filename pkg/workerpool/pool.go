// Package workerpool implements a bounded-concurrency task runner. On
// task failure, the pool continues draining all in-flight and queued
// tasks, collects every failure, and surfaces the first to the caller
// with the rest retained for logging — so that files whose tasks
// succeeded are still written to the output even when a sibling task
// fails.
//
// The run-loop shape (a goroutine driven by channels, shut down via a
// context and awaited with a sync.WaitGroup) is grounded on the
// concurrentHash pattern in
// pkg/synchronization/endpoint/local/stager.go.
package workerpool

import (
	"context"
	"sync"

	"github.com/buildfilter/buildfilter/pkg/contextutil"
)

// Task is an independent unit of work dispatched by the Pool. Tasks must
// operate on disjoint state: the pool makes no ordering guarantee between
// tasks running concurrently.
type Task func(ctx context.Context) error

// Pool runs tasks with bounded concurrency.
type Pool struct {
	concurrency int
}

// New creates a Pool with the given concurrency, clamped to at least 1.
func New(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{concurrency: concurrency}
}

// Errors aggregates every failure observed during a Run, preserving
// encounter order. Error renders the first failure; the full slice
// remains available to callers that want to log every failure.
type Errors struct {
	All []error
}

// Error implements the error interface by rendering the first failure.
func (e *Errors) Error() string {
	return e.All[0].Error()
}

// Unwrap exposes the first failure for errors.Is/errors.As traversal.
func (e *Errors) Unwrap() error {
	return e.All[0]
}

// Run dispatches tasks across the pool's fixed number of worker
// goroutines, blocking until every task has been attempted. It returns
// nil if every task succeeded, or an *Errors aggregating every failure
// otherwise (never partial: the full task list is always drained).
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task)
	errCh := make(chan error, len(tasks))

	var workers sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for task := range taskCh {
				if contextutil.IsCancelled(ctx) {
					errCh <- ctx.Err()
					continue
				}
				if err := task(ctx); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	workers.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return &Errors{All: errs}
}
