package middleware

import (
	"context"
	"fmt"

	"github.com/vango-dev/area/pkg/area"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "area"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "area").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// IncludeParams adds route parameters as span attributes.
	// May contain identifiers - disabled by default.
	IncludeParams bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav *area.Navigation) bool

	// AttributeExtractor adds custom attributes for a navigation.
	AttributeExtractor func(nav *area.Navigation) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(t trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = t
	}
}

// WithIncludeParams enables route parameters in spans.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *area.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *area.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The span is stored in the context passed to the rest of the chain, so
// guards and lazy loaders can retrieve it with trace.SpanFromContext.
// Denied and superseded navigations end with an error status.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure the provider before creating routers:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) area.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}

	return area.MiddlewareFunc(func(ctx context.Context, nav *area.Navigation, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("area.name", nav.Area),
			attribute.String("area.op", string(nav.Op)),
			attribute.String("area.route", nav.Route),
			attribute.Bool("area.replace", nav.Replace),
		}
		if !nav.Component.IsZero() {
			attrs = append(attrs, attribute.String("area.component", nav.Component.String()))
		}
		if nav.From != nil {
			attrs = append(attrs, attribute.String("area.from", nav.From.Route))
		}
		if config.IncludeParams {
			for k, v := range nav.Params {
				attrs = append(attrs, attribute.String("area.param."+k, v))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}

		spanCtx, span := tracer.Start(ctx, spanName(nav),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)

		status := result(nav, err)
		span.SetAttributes(attribute.String("area.status", status))
		if nav.Entry != nil {
			span.SetAttributes(
				attribute.Int64("area.seq", int64(nav.Entry.Seq)),
				attribute.String("area.pattern", nav.Entry.Pattern),
			)
		}
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		case status != StatusOK:
			span.SetStatus(codes.Error, status)
		default:
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

func spanName(nav *area.Navigation) string {
	return fmt.Sprintf("area.%s %s", nav.Op, nav.Area)
}
