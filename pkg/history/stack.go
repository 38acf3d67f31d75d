// Package history implements the back/forward navigation stack of an area.
package history

import "sync"

// Stack is a browser-style history: a current value with a back list and
// a forward list. The zero value is not usable; call New.
type Stack[T any] struct {
	mu      sync.Mutex
	back    []T
	forward []T
	current T
	has     bool
	limit   int
}

// New creates a stack. limit caps the back list; zero means unlimited.
func New[T any](limit int) *Stack[T] {
	if limit < 0 {
		limit = 0
	}
	return &Stack[T]{limit: limit}
}

// Push makes v current. The previous current value moves to the back
// list and the forward list is cleared.
func (s *Stack[T]) Push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.has {
		s.back = append(s.back, s.current)
		if s.limit > 0 && len(s.back) > s.limit {
			s.back = s.back[len(s.back)-s.limit:]
		}
	}
	s.forward = nil
	s.current = v
	s.has = true
}

// Replace makes v current without recording history.
func (s *Stack[T]) Replace(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	s.has = true
}

// Back moves to the previous value and returns it.
// It returns false when there is nothing to go back to.
func (s *Stack[T]) Back() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.back) == 0 {
		return zero, false
	}
	if s.has {
		s.forward = append(s.forward, s.current)
	}
	last := len(s.back) - 1
	s.current = s.back[last]
	s.back[last] = zero
	s.back = s.back[:last]
	s.has = true
	return s.current, true
}

// Forward moves to the value left by the last Back.
func (s *Stack[T]) Forward() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.forward) == 0 {
		return zero, false
	}
	if s.has {
		s.back = append(s.back, s.current)
	}
	last := len(s.forward) - 1
	s.current = s.forward[last]
	s.forward[last] = zero
	s.forward = s.forward[:last]
	s.has = true
	return s.current, true
}

// PeekBack returns the value Back would move to, without moving.
func (s *Stack[T]) PeekBack() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if len(s.back) == 0 {
		return zero, false
	}
	return s.back[len(s.back)-1], true
}

// PeekForward returns the value Forward would move to, without moving.
func (s *Stack[T]) PeekForward() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if len(s.forward) == 0 {
		return zero, false
	}
	return s.forward[len(s.forward)-1], true
}

// Current returns the current value.
func (s *Stack[T]) Current() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}

// Clear drops the current value and moves it to the forward list, keeping
// the back list. Used when an area goes idle.
func (s *Stack[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has {
		s.forward = append(s.forward, s.current)
	}
	var zero T
	s.current = zero
	s.has = false
}

// Len returns the number of entries in the back list.
func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.back)
}

// Reset drops all history and the current value.
func (s *Stack[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.back = nil
	s.forward = nil
	s.current = zero
	s.has = false
}
