// Package guard gates navigation on asynchronous boolean conditions.
//
// A Guard is a function that answers "may this navigation proceed?". Most
// guards come from a push-based state source, such as an authentication
// stream:
//
//	loggedIn := reactive.NewBehaviorSubject(false)
//	g := guard.FromObservable(loggedIn)
//
// The observable is subscribed once per evaluation, its first value decides,
// and the subscription is dropped right away. Guards hold no state between
// navigations.
package guard

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/reactive"
)

// ErrDenied is the error carried by a denied navigation.
var ErrDenied = errors.New("A020")

// ErrFailed wraps errors raised while evaluating a guard.
var ErrFailed = errors.New("A021")

// ErrNoValue is returned when a guard's observable completes without a value.
var ErrNoValue = errors.New("A022")

// Guard reports whether a navigation may proceed.
// It may block until the answer is known; it must return when ctx is done.
type Guard func(ctx context.Context) (bool, error)

// FromObservable returns a guard answering with the first value of obs.
// There is no timeout beyond the navigation's context.
func FromObservable(obs reactive.Observable[bool]) Guard {
	return func(ctx context.Context) (bool, error) {
		v, err := reactive.First(ctx, obs)
		if stderrors.Is(err, reactive.ErrNoValue) {
			return false, errors.New("A022").Wrap(err)
		}
		return v, err
	}
}

// Static returns a guard with a fixed answer.
func Static(allow bool) Guard {
	return func(context.Context) (bool, error) { return allow, nil }
}

// Allow is a guard that always allows.
func Allow() Guard { return Static(true) }

// Deny is a guard that always denies.
func Deny() Guard { return Static(false) }

// All allows when every guard allows. Guards run in order and evaluation
// stops at the first denial or error.
func All(guards ...Guard) Guard {
	return func(ctx context.Context) (bool, error) {
		for _, g := range guards {
			if g == nil {
				continue
			}
			ok, err := g(ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any allows when at least one guard allows. Errors from guards that do
// not allow are returned only if no guard allows.
func Any(guards ...Guard) Guard {
	return func(ctx context.Context) (bool, error) {
		var firstErr error
		for _, g := range guards {
			if g == nil {
				continue
			}
			ok, err := g(ctx)
			if err == nil && ok {
				return true, nil
			}
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return false, firstErr
	}
}

// Not inverts a guard. Errors are passed through.
func Not(g Guard) Guard {
	return func(ctx context.Context) (bool, error) {
		ok, err := g(ctx)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

// Decision is the outcome of evaluating a guard.
type Decision struct {
	// Allow is true when navigation may proceed.
	Allow bool

	// Err is set when the guard failed or evaluation was cancelled.
	Err error

	// Cancelled is true when ctx ended before the guard answered.
	Cancelled bool
}

// Evaluate runs g and fails closed: an error from the guard denies the
// navigation and is logged. A nil guard allows.
func Evaluate(ctx context.Context, g Guard, logger *slog.Logger) Decision {
	if g == nil {
		return Decision{Allow: true}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ok, err := g(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
			return Decision{Err: ctxErr, Cancelled: true}
		}
		logger.Error("guard evaluation failed", "error", err)
		return Decision{Err: errors.FromError(err, "A021")}
	}
	return Decision{Allow: ok}
}
