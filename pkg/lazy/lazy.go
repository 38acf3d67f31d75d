package lazy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/area/pkg/component"
)

// LoadFunc loads a module.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Option configures a Loader.
type Option func(*options)

type options struct {
	timeout time.Duration
	name    string
	logger  *slog.Logger
}

// WithTimeout bounds every load attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithName labels the loader in logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// attempt is one invocation of the load function.
type attempt[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Loader memoizes a LoadFunc.
type Loader[T any] struct {
	fn   LoadFunc[T]
	opts options

	mu       sync.Mutex
	value    T
	loaded   bool
	inflight *attempt[T]

	calls atomic.Int64
}

// New creates a Loader for fn.
func New[T any](fn LoadFunc[T], opts ...Option) *Loader[T] {
	o := options{logger: slog.Default().With("component", "lazy")}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{fn: fn, opts: o}
}

// Component creates a lazy component constructor.
func Component(fn LoadFunc[component.Constructor], opts ...Option) *Loader[component.Constructor] {
	return New(fn, opts...)
}

// Load returns the module, starting or joining a load attempt if needed.
// A cancelled ctx stops the wait, not the attempt.
func (l *Loader[T]) Load(ctx context.Context) (T, error) {
	l.mu.Lock()
	if l.loaded {
		v := l.value
		l.mu.Unlock()
		return v, nil
	}
	a := l.startLocked()
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.value, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Preload starts loading without waiting. It does nothing when the module
// is loaded or an attempt is in flight.
func (l *Loader[T]) Preload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		l.startLocked()
	}
}

// Get returns the module if it has been loaded.
func (l *Loader[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.loaded
}

// Loaded reports whether the module has been loaded.
func (l *Loader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Calls returns how many times the load function has run.
func (l *Loader[T]) Calls() int {
	return int(l.calls.Load())
}

// Forget drops a loaded module so the next Load fetches it again.
// An attempt in flight is not affected.
func (l *Loader[T]) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.value = zero
	l.loaded = false
}

// startLocked returns the attempt in flight, starting one if needed.
// Caller holds l.mu.
func (l *Loader[T]) startLocked() *attempt[T] {
	if l.inflight != nil {
		return l.inflight
	}
	a := &attempt[T]{done: make(chan struct{})}
	l.inflight = a
	go l.run(a)
	return a
}

func (l *Loader[T]) run(a *attempt[T]) {
	ctx := context.Background()
	if l.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.timeout)
		defer cancel()
	}

	l.calls.Add(1)
	v, err := l.call(ctx)

	l.mu.Lock()
	if err == nil {
		l.value = v
		l.loaded = true
	}
	l.inflight = nil
	l.mu.Unlock()

	if err != nil {
		l.opts.logger.Warn("lazy load failed", "name", l.opts.name, "error", err)
	}

	a.value, a.err = v, err
	close(a.done)
}

// call invokes the load function, turning a panic into an error.
func (l *Loader[T]) call(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lazy: load panicked: %v", r)
		}
	}()
	return l.fn(ctx)
}
