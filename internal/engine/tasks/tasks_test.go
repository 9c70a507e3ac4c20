package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/engine/tasks"
)

func value[T any](v T) tasks.Task[T] {
	return func(context.Context) (T, error) { return v, nil }
}

func failure[T any](err error) tasks.Task[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

func TestChain(t *testing.T) {
	t.Run("runs steps in order", func(t *testing.T) {
		var order []int
		err := tasks.Chain(context.Background(),
			func(context.Context) error { order = append(order, 1); return nil },
			func(context.Context) error { order = append(order, 2); return nil },
		)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("stops at first error", func(t *testing.T) {
		boom := errors.New("boom")
		called := false
		err := tasks.Chain(context.Background(),
			func(context.Context) error { return boom },
			func(context.Context) error { called = true; return nil },
		)
		require.ErrorIs(t, err, boom)
		assert.False(t, called)
	})

	t.Run("honours cancellation between steps", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		called := false
		err := tasks.Chain(ctx,
			func(context.Context) error { cancel(); return nil },
			func(context.Context) error { called = true; return nil },
		)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestThen(t *testing.T) {
	double := tasks.Then(value(21), func(_ context.Context, v int) (int, error) { return v * 2, nil })
	v, err := double(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	failed := tasks.Then(failure[int](boom), func(context.Context, int) (string, error) {
		t.Fatal("next must not run")
		return "", nil
	})
	_, err = failed(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAny(t *testing.T) {
	t.Run("first success wins and losers are cancelled", func(t *testing.T) {
		var cancelled atomic.Int32
		var slow tasks.Task[string] = func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				cancelled.Add(1)
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "slow", nil
			}
		}

		v, err := tasks.Any(context.Background(), slow, value("fast"), slow)
		require.NoError(t, err)
		assert.Equal(t, "fast", v)
		assert.Equal(t, int32(2), cancelled.Load(), "losers are awaited before Any returns")
	})

	t.Run("success after failures", func(t *testing.T) {
		v, err := tasks.Any(context.Background(), failure[int](errors.New("a")), value(7))
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("all failed", func(t *testing.T) {
		a, b := errors.New("mirror a down"), errors.New("mirror b down")
		_, err := tasks.Any(context.Background(), failure[int](a), failure[int](b))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAllTasksFailed)
		assert.ErrorIs(t, err, a)
		assert.ErrorIs(t, err, b)
	})

	t.Run("no tasks", func(t *testing.T) {
		_, err := tasks.Any[int](context.Background())
		assert.ErrorIs(t, err, domain.ErrNoTasks)
	})
}

func TestFallback(t *testing.T) {
	t.Run("stops at first success", func(t *testing.T) {
		var calls int
		counting := func(v int, err error) tasks.Task[int] {
			return func(context.Context) (int, error) {
				calls++
				return v, err
			}
		}

		v, err := tasks.Fallback(context.Background(),
			counting(0, errors.New("installer broken")),
			counting(2, nil),
			counting(3, nil),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		assert.Equal(t, 2, calls)
	})

	t.Run("all failed", func(t *testing.T) {
		first := errors.New("first")
		_, err := tasks.Fallback(context.Background(), failure[int](first), failure[int](errors.New("second")))
		assert.ErrorIs(t, err, domain.ErrAllTasksFailed)
		assert.ErrorIs(t, err, first)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tasks.Fallback(ctx, value(1))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFanOut(t *testing.T) {
	t.Run("results keep task order", func(t *testing.T) {
		delayed := func(v int, d time.Duration) tasks.Task[int] {
			return func(context.Context) (int, error) {
				time.Sleep(d)
				return v, nil
			}
		}

		got, err := tasks.FanOut(context.Background(), 2,
			delayed(1, 30*time.Millisecond),
			delayed(2, 0),
			delayed(3, 10*time.Millisecond),
		)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	})

	t.Run("respects the limit", func(t *testing.T) {
		var running, peak atomic.Int32
		var task tasks.Task[int] = func(context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return 0, nil
		}

		_, err := tasks.FanOut(context.Background(), 2, task, task, task, task, task)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("first failure is returned", func(t *testing.T) {
		boom := errors.New("boom")
		got, err := tasks.FanOut(context.Background(), 0, value(1), failure[int](boom))
		require.ErrorIs(t, err, boom)
		assert.Nil(t, got)
	})
}
