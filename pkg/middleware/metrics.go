package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/area/pkg/area"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "area").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "area",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records navigation metrics. It implements area.Middleware, and
// ObserveRedirect can be registered as a redirect handler.
type Metrics struct {
	navigations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    *prometheus.GaugeVec
	redirects   *prometheus.CounterVec
}

type metricsKey struct {
	reg       prometheus.Registerer
	namespace string
	subsystem string
}

// Collectors are shared per registry so that building the middleware twice
// does not register duplicate collectors.
var (
	registeredMu sync.Mutex
	registered   = map[metricsKey]*Metrics{}
)

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total navigations by area, operation and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"area", "op", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration including guards and lazy loads",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"area", "op"}),

		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_in_flight",
			Help:        "Navigations currently passing through middleware",
			ConstLabels: config.ConstLabels,
		}, []string{"area"}),

		redirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total navigations denied by a guard",
			ConstLabels: config.ConstLabels,
		}, []string{"area"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// navigations.
//
// Example:
//
//	m := middleware.Prometheus(middleware.WithNamespace("shop"))
//	r := area.New(area.WithMiddleware(m), area.WithRedirectHandler(m.ObserveRedirect))
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	key := metricsKey{reg: config.Registry, namespace: config.Namespace, subsystem: config.Subsystem}
	registeredMu.Lock()
	defer registeredMu.Unlock()
	if m, ok := registered[key]; ok {
		return m
	}
	m := initMetrics(config)
	registered[key] = m
	return m
}

// Handle implements area.Middleware.
func (m *Metrics) Handle(ctx context.Context, nav *area.Navigation, next func(context.Context) error) error {
	op := string(nav.Op)
	gauge := m.inFlight.WithLabelValues(nav.Area)
	gauge.Inc()
	defer gauge.Dec()

	start := time.Now()
	err := next(ctx)
	m.duration.WithLabelValues(nav.Area, op).Observe(time.Since(start).Seconds())
	m.navigations.WithLabelValues(nav.Area, op, result(nav, err)).Inc()
	return err
}

// ObserveRedirect counts a denied navigation.
func (m *Metrics) ObserveRedirect(rd area.Redirect) {
	m.redirects.WithLabelValues(rd.Area).Inc()
}
