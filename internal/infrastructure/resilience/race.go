package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrDeadlineExceeded is returned by Race when the soft deadline fires first
var ErrDeadlineExceeded = errors.New("soft deadline exceeded")

// Race runs fn and waits at most budget for it. When the budget elapses first
// the context handed to fn is cancelled, its eventual result is dropped, and
// ErrDeadlineExceeded is returned. A cancelled parent ctx wins over both.
//
// fn must honour ctx for the abandoned goroutine to exit promptly.
func Race[T any](ctx context.Context, budget time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	type result struct {
		value T
		err   error
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan result, 1)

	go func() {
		v, err := fn(runCtx)
		done <- result{value: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-done:
		cancel()
		return r.value, r.err
	case <-timer.C:
		cancel()
		return zero, ErrDeadlineExceeded
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}
