package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/area/pkg/area"
)

// Logging creates middleware that logs every navigation once it finishes.
// Successful navigations are logged at debug level, denied and superseded
// ones at info, everything else at warn. A nil logger uses slog.Default.
func Logging(logger *slog.Logger) area.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "navigation")

	return area.MiddlewareFunc(func(ctx context.Context, nav *area.Navigation, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		status := result(nav, err)
		attrs := []any{
			"area", nav.Area,
			"op", string(nav.Op),
			"route", nav.Route,
			"status", status,
			"duration", time.Since(start),
		}
		if nav.Entry != nil {
			attrs = append(attrs, "seq", nav.Entry.Seq, "component", nav.Entry.Component.String())
		}

		switch status {
		case StatusOK:
			logger.DebugContext(ctx, "navigation", attrs...)
		case StatusDenied, StatusSuperseded, StatusCancelled, StatusAborted:
			logger.InfoContext(ctx, "navigation", attrs...)
		default:
			logger.WarnContext(ctx, "navigation", append(attrs, "error", err)...)
		}
		return err
	})
}
