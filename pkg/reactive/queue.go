package reactive

import "sync"

// deliveryQueue serializes notifications for one subject.
// The goroutine that finds the queue idle drains it; others only enqueue.
type deliveryQueue struct {
	mu       sync.Mutex
	pending  []func()
	draining bool
}

// push enqueues fn without running it. Subjects push while holding their
// own lock so that queue order follows the order of state changes.
func (q *deliveryQueue) push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// drain runs queued functions until the queue is empty, unless another
// goroutine is already draining it.
func (q *deliveryQueue) drain() {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	for len(q.pending) > 0 {
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()
		q.call(next)
		q.mu.Lock()
	}
	q.draining = false
	q.mu.Unlock()
}

// call runs fn, releasing the drain flag if fn panics.
func (q *deliveryQueue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.mu.Lock()
			q.draining = false
			q.pending = nil
			q.mu.Unlock()
			panic(r)
		}
	}()
	fn()
}
