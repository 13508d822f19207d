package pipeline

import (
	"context"
	"fmt"
)

type result[T any] struct {
	value T
	err   error
}

// offload runs fn on its own goroutine and waits for it or for ctx.
// A panic inside fn is returned as an error. When ctx finishes first the
// goroutine is left to complete on its own; its result is discarded.
func offload[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	done := make(chan result[T], 1)

	go func() {
		var r result[T]
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("collaborator panicked: %v", p)
			}
			done <- r
		}()
		r.value, r.err = fn(ctx)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
