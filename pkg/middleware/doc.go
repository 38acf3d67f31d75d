// Package middleware provides navigation middleware for area routers.
//
// This package includes:
//   - Prometheus metrics for navigations and redirects
//   - OpenTelemetry tracing of navigations
//   - Structured logging of navigations
//
// # Prometheus Metrics
//
// The Prometheus middleware counts navigations by area, operation and
// outcome, and observes their duration:
//   - area_navigations_total{area,op,status}
//   - area_navigation_duration_seconds{area,op}
//   - area_navigations_in_flight{area}
//   - area_redirects_total{area}
//
//	m := middleware.Prometheus(middleware.WithNamespace("shop"))
//	r := area.New(
//	    area.WithMiddleware(m),
//	    area.WithRedirectHandler(m.ObserveRedirect),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// The OpenTelemetry middleware starts a span for every navigation. The span
// context is passed down the chain, so guards and lazy loaders that take a
// context see it.
//
//	area.WithMiddleware(
//	    middleware.OpenTelemetry(middleware.WithTracerName("shop")),
//	)
//
// # Logging
//
//	area.WithMiddleware(middleware.Logging(slog.Default()))
package middleware
