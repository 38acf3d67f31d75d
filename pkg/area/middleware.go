package area

import "context"

// Middleware wraps navigations. Handle must call next to let the
// navigation proceed. Returning without calling it aborts the navigation:
// the router reports the returned error, or ErrAborted when it is nil.
type Middleware interface {
	Handle(ctx context.Context, nav *Navigation, next func(context.Context) error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, nav *Navigation, next func(context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
	return f(ctx, nav, next)
}

// Compose builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func Compose(ctx context.Context, nav *Navigation, mw []Middleware, handler func(context.Context) error) error {
	if len(mw) == 0 {
		return handler(ctx)
	}

	// Build chain from end to start
	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, nav, next)
		}
	}

	return chain(ctx)
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
		return Compose(ctx, nav, middleware, next)
	})
}

// Only runs mw for navigations matching cond and skips it otherwise.
func Only(cond func(nav *Navigation) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
		if !cond(nav) {
			return next(ctx)
		}
		return mw.Handle(ctx, nav, next)
	})
}

// ForArea runs mw only for navigations of the named area.
func ForArea(name string, mw Middleware) Middleware {
	return Only(func(nav *Navigation) bool { return nav.Area == name }, mw)
}
