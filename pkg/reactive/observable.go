package reactive

import (
	"context"
	"sync"
)

// Observer receives the notifications of an Observable.
// Nil callbacks are ignored.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Func returns an Observer that only handles values.
func Func[T any](fn func(T)) Observer[T] {
	return Observer[T]{Next: fn}
}

func (o Observer[T]) next(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o Observer[T]) error(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o Observer[T]) complete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Observable is a stream of values of type T.
type Observable[T any] interface {
	// Subscribe registers an observer and returns its subscription.
	Subscribe(o Observer[T]) Subscription
}

// ObservableFunc adapts a function to the Observable interface.
type ObservableFunc[T any] func(o Observer[T]) Subscription

// Subscribe implements Observable.
func (f ObservableFunc[T]) Subscribe(o Observer[T]) Subscription {
	return f(o)
}

// Subscription cancels delivery to one observer.
type Subscription interface {
	// Unsubscribe stops delivery. Safe to call more than once.
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
// The function runs at most once.
func SubscriptionFunc(fn func()) Subscription {
	return &funcSubscription{fn: fn}
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (s *funcSubscription) Unsubscribe() {
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
}

// noopSubscription is returned when there is nothing to cancel.
type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// SubscribeContext subscribes o to obs until ctx is done or the returned
// subscription is cancelled, whichever comes first.
func SubscribeContext[T any](ctx context.Context, obs Observable[T], o Observer[T]) Subscription {
	if err := ctx.Err(); err != nil {
		return noopSubscription{}
	}

	stop := make(chan struct{})
	inner := obs.Subscribe(o)
	sub := SubscriptionFunc(func() {
		close(stop)
		inner.Unsubscribe()
	})

	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-stop:
		}
	}()

	return sub
}
