package area

import "log/slog"

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMiddleware appends navigation middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithRedirectHandler registers a function called for every denied
// navigation, in addition to the Redirects stream.
func WithRedirectHandler(fn func(Redirect)) Option {
	return func(r *Router) {
		if fn != nil {
			r.handlers = append(r.handlers, fn)
		}
	}
}

// WithHistoryLimit caps the back history of each area. Zero is unlimited.
func WithHistoryLimit(n int) Option {
	return func(r *Router) {
		r.historyLimit = n
	}
}
