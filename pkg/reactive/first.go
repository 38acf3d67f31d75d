package reactive

import (
	"context"
	"errors"
)

// ErrNoValue is returned by First when the observable completes before
// emitting a value.
var ErrNoValue = errors.New("reactive: completed without a value")

type firstResult[T any] struct {
	value T
	err   error
}

// First subscribes to obs, waits for its first notification and
// unsubscribes. There is no timeout beyond ctx.
func First[T any](ctx context.Context, obs Observable[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ch := make(chan firstResult[T], 1)
	offer := func(r firstResult[T]) {
		select {
		case ch <- r:
		default:
		}
	}

	sub := obs.Subscribe(Observer[T]{
		Next:     func(v T) { offer(firstResult[T]{value: v}) },
		Error:    func(err error) { offer(firstResult[T]{err: err}) },
		Complete: func() { offer(firstResult[T]{err: ErrNoValue}) },
	})
	defer sub.Unsubscribe()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
