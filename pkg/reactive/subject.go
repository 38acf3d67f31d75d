package reactive

import (
	"sync"
	"sync/atomic"
)

// subscriber is one registered observer.
type subscriber[T any] struct {
	id       uint64
	observer Observer[T]
	active   atomic.Bool

	// While replaying, notifications from the subject's queue are held
	// and delivered after the replayed value.
	mu        sync.Mutex
	replaying bool
	held      []func()
}

func (s *subscriber[T]) next(v T) {
	if s.hold(func() { s.deliver(v) }) {
		return
	}
	s.deliver(v)
}

func (s *subscriber[T]) deliver(v T) {
	if s.active.Load() {
		s.observer.next(v)
	}
}

// terminate delivers a terminal notification once.
func (s *subscriber[T]) terminate(err error) {
	if s.hold(func() { s.end(err) }) {
		return
	}
	s.end(err)
}

func (s *subscriber[T]) end(err error) {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	if err != nil {
		s.observer.error(err)
	} else {
		s.observer.complete()
	}
}

// hold queues fn if the subscriber is replaying.
func (s *subscriber[T]) hold(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.replaying {
		return false
	}
	s.held = append(s.held, fn)
	return true
}

// replay delivers v directly on the calling goroutine, then everything
// held meanwhile. replaying must have been set before the subscriber
// became visible to the subject.
func (s *subscriber[T]) replay(v T) {
	s.deliver(v)
	for {
		s.mu.Lock()
		if len(s.held) == 0 {
			s.replaying = false
			s.mu.Unlock()
			return
		}
		fn := s.held[0]
		s.held[0] = nil
		s.held = s.held[1:]
		s.mu.Unlock()
		fn()
	}
}

// Subject is a hot multicast observable. Values emitted before a
// subscription are not replayed to it.
type Subject[T any] struct {
	mu     sync.Mutex
	subs   []*subscriber[T]
	nextID uint64
	closed bool
	err    error
	queue  deliveryQueue
}

// NewSubject creates an empty subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe implements Observable.
func (s *Subject[T]) Subscribe(o Observer[T]) Subscription {
	sub, closed, err := s.add(o)
	if closed {
		sub.end(err)
		return noopSubscription{}
	}
	return SubscriptionFunc(func() { s.remove(sub) })
}

// add registers o. For a closed subject it returns the terminal state instead.
func (s *Subject[T]) add(o Observer[T]) (*subscriber[T], bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &subscriber[T]{id: s.nextID, observer: o}
	sub.active.Store(true)
	if s.closed {
		return sub, true, s.err
	}
	s.subs = append(s.subs, sub)
	return sub, false, nil
}

// remove unregisters a subscriber, keeping the order of the others.
func (s *Subject[T]) remove(sub *subscriber[T]) {
	sub.active.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subs {
		if existing.id == sub.id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies the subscriber list so callbacks run without the lock.
func (s *Subject[T]) snapshot() []*subscriber[T] {
	subs := make([]*subscriber[T], len(s.subs))
	copy(subs, s.subs)
	return subs
}

// Next emits v to every current subscriber, in subscription order.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	subs := s.snapshot()
	s.queue.push(func() {
		for _, sub := range subs {
			sub.next(v)
		}
	})
	s.mu.Unlock()
	s.queue.drain()
}

// Error terminates the subject with err.
func (s *Subject[T]) Error(err error) {
	s.terminate(err)
}

// Complete terminates the subject without an error.
func (s *Subject[T]) Complete() {
	s.terminate(nil)
}

func (s *Subject[T]) terminate(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	subs := s.subs
	s.subs = nil
	s.queue.push(func() {
		for _, sub := range subs {
			sub.terminate(err)
		}
	})
	s.mu.Unlock()
	s.queue.drain()
}

// Closed reports whether the subject has terminated.
func (s *Subject[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// BehaviorSubject is a Subject that remembers its latest value and replays
// it to every new subscriber.
type BehaviorSubject[T any] struct {
	Subject[T]
	value T
}

// NewBehaviorSubject creates a subject holding initial.
func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	return &BehaviorSubject[T]{value: initial}
}

// Value returns the latest value.
func (b *BehaviorSubject[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Next stores v and emits it.
func (b *BehaviorSubject[T]) Next(v T) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.value = v
	b.emitLocked(v)
	b.mu.Unlock()
	b.queue.drain()
}

// emitLocked queues delivery of v to the current subscribers.
func (b *BehaviorSubject[T]) emitLocked(v T) {
	subs := b.snapshot()
	b.queue.push(func() {
		for _, sub := range subs {
			sub.next(v)
		}
	})
}

// Update applies fn to the latest value and emits the result.
// The read and the write happen under one lock, so concurrent updates
// never lose a write.
func (b *BehaviorSubject[T]) Update(fn func(T) T) T {
	b.mu.Lock()
	if b.closed {
		v := b.value
		b.mu.Unlock()
		return v
	}
	v := fn(b.value)
	b.value = v
	b.emitLocked(v)
	b.mu.Unlock()
	b.queue.drain()
	return v
}

// Subscribe implements Observable. The latest value is delivered first,
// before Subscribe returns, even when called from a callback of b.
// Values emitted meanwhile follow it in order.
func (b *BehaviorSubject[T]) Subscribe(o Observer[T]) Subscription {
	b.mu.Lock()
	b.nextID++
	sub := &subscriber[T]{id: b.nextID, observer: o}
	sub.active.Store(true)
	if b.closed {
		err := b.err
		b.mu.Unlock()
		sub.end(err)
		return noopSubscription{}
	}
	sub.replaying = true
	b.subs = append(b.subs, sub)
	v := b.value
	b.mu.Unlock()

	sub.replay(v)
	return SubscriptionFunc(func() { b.remove(sub) })
}
