package reactive

import "sync"

// Map returns an observable applying fn to every value of src.
func Map[T, R any](src Observable[T], fn func(T) R) Observable[R] {
	return ObservableFunc[R](func(o Observer[R]) Subscription {
		return src.Subscribe(Observer[T]{
			Next:     func(v T) { o.next(fn(v)) },
			Error:    o.error,
			Complete: o.complete,
		})
	})
}

// Filter returns an observable forwarding only the values keep accepts.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Subscription {
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				if keep(v) {
					o.next(v)
				}
			},
			Error:    o.error,
			Complete: o.complete,
		})
	})
}

// DistinctUntilChanged suppresses values equal to the previous one.
// The first value is always forwarded. State is kept per subscription.
func DistinctUntilChanged[T any](src Observable[T], equal func(a, b T) bool) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Subscription {
		var (
			mu   sync.Mutex
			last T
			seen bool
		)
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				mu.Lock()
				if seen && equal(last, v) {
					mu.Unlock()
					return
				}
				last, seen = v, true
				mu.Unlock()
				o.next(v)
			},
			Error:    o.error,
			Complete: o.complete,
		})
	})
}

// Of returns a cold observable emitting values synchronously, then completing.
func Of[T any](values ...T) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Subscription {
		for _, v := range values {
			o.next(v)
		}
		o.complete()
		return noopSubscription{}
	})
}

// Fail returns an observable that errors immediately.
func Fail[T any](err error) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Subscription {
		o.error(err)
		return noopSubscription{}
	})
}

// Never returns an observable that never emits.
func Never[T any]() Observable[T] {
	return ObservableFunc[T](func(Observer[T]) Subscription {
		return noopSubscription{}
	})
}
