// Package tasks provides combinators for composing blocking, cancellable steps:
// sequential chains, races, fallbacks and bounded fan-out.
package tasks

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Task produces a value or fails. It must honour ctx cancellation.
type Task[T any] func(ctx context.Context) (T, error)

// Step is a task without a result.
type Step func(ctx context.Context) error

// Chain runs steps in order and stops at the first error.
func Chain(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Then feeds the result of first into next.
func Then[A, B any](first Task[A], next func(context.Context, A) (B, error)) Task[B] {
	return func(ctx context.Context) (B, error) {
		a, err := first(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return next(ctx, a)
	}
}

// Any races tasks and returns the first success. The remaining tasks are
// cancelled and awaited before Any returns. When every task fails, the errors
// are joined in task order.
func Any[T any](ctx context.Context, tasks ...Task[T]) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, domain.ErrNoTasks
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		index int
		value T
		err   error
	}
	outcomes := make(chan outcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Go(func() {
			v, err := task(ctx)
			outcomes <- outcome{index: i, value: v, err: err}
		})
	}

	errs := make([]error, len(tasks))
	for range tasks {
		o := <-outcomes
		if o.err == nil {
			cancel()
			wg.Wait()
			return o.value, nil
		}
		errs[o.index] = o.err
	}
	wg.Wait()

	return zero, allFailed(errs)
}

// Fallback runs tasks one after another and returns the first success.
func Fallback[T any](ctx context.Context, tasks ...Task[T]) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, domain.ErrNoTasks
	}

	errs := make([]error, 0, len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := task(ctx)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return zero, allFailed(errs)
}

// FanOut runs tasks concurrently, at most limit at a time (unbounded when
// limit <= 0), and returns their results in task order. The first failure
// cancels the others.
func FanOut[T any](ctx context.Context, limit int, tasks ...Task[T]) ([]T, error) {
	results := make([]T, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, err := task(ctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func allFailed(errs []error) error {
	return errors.Join(domain.ErrAllTasksFailed, zerr.With(errors.Join(errs...), "attempts", len(errs)))
}
