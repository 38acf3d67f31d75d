package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vango-dev/area/internal/config"
	"github.com/vango-dev/area/pkg/area"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/devtools"
	"github.com/vango-dev/area/pkg/dialog"
	"github.com/vango-dev/area/pkg/lazy"
	"github.com/vango-dev/area/pkg/lazy/s3loader"
	"github.com/vango-dev/area/pkg/manifest"
	"github.com/vango-dev/area/pkg/middleware"
	"github.com/vango-dev/area/pkg/notify"
)

// app is a router with everything the server wires around it.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	router   *area.Router
	flags    *manifest.Flags
	notifier *notify.Notifier
	dialogs  *dialog.Service
	registry *prometheus.Registry
	manifest *manifest.Manifest
}

// appOptions replaces collaborators, for tests.
type appOptions struct {
	// Objects serves remote templates instead of a real S3 client.
	Objects s3loader.ObjectGetter
}

// newApp builds the router from cfg and applies the manifest if one exists.
func newApp(cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		flags:    manifest.NewFlags(),
		notifier: notify.New(notify.WithLogger(logger.With("component", "notify"))),
		dialogs:  dialog.NewService(dialog.WithLogger(logger.With("component", "dialog"))),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mw := []area.Middleware{middleware.Logging(logger)}
	routerOpts := []area.Option{
		area.WithLogger(logger.With("component", "area")),
		area.WithHistoryLimit(cfg.History.Limit),
	}
	if cfg.Tracing.Enabled {
		mw = append(mw, middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}
	if cfg.Metrics.Enabled {
		m := middleware.Prometheus(
			middleware.WithRegistry(a.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		mw = append(mw, m)
		routerOpts = append(routerOpts, area.WithRedirectHandler(m.ObserveRedirect))
	}
	a.router = area.New(append(routerOpts, area.WithMiddleware(mw...))...)
	a.router.OnRedirect(func(rd area.Redirect) {
		note := notify.Notification{
			Level:   notify.LevelWarning,
			Title:   "Navigation denied",
			Message: rd.Area + ": " + rd.Route,
			Area:    rd.Area,
		}
		a.notifier.Publish(note)
	})

	objects := opts.Objects
	if objects == nil && cfg.Storage.Enabled() {
		objects = newS3Client(cfg.Storage)
	}

	if _, err := os.Stat(cfg.ManifestPath()); err != nil {
		logger.Warn("no route manifest, starting without routes", "path", cfg.ManifestPath())
		return a, nil
	}
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		a.close()
		return nil, err
	}
	b := manifest.Bindings{Flags: a.flags}
	if objects != nil {
		b.Remote = func(key string) component.LazyConstructor {
			return s3loader.Template(objects, cfg.Storage.Bucket, path.Join(cfg.Storage.Prefix, key),
				lazy.WithLogger(logger.With("component", "lazy")))
		}
	}
	if err := m.Apply(a.router, b); err != nil {
		a.close()
		return nil, err
	}
	a.manifest = m
	return a, nil
}

// preload starts every lazy component of every area.
func (a *app) preload() {
	for _, name := range a.router.Areas() {
		a.router.Preload(name)
	}
}

// mountDefaults pushes each area's first static route so that it is not
// idle.
func (a *app) mountDefaults(ctx context.Context) {
	if a.manifest == nil {
		return
	}
	for _, spec := range a.manifest.Areas {
		when, ok := firstStatic(spec.Routes)
		if !ok {
			continue
		}
		req := area.Request{Area: spec.Name, Route: when}
		if _, err := a.router.Push(ctx, req); err != nil {
			a.logger.Warn("initial navigation failed", "area", spec.Name, "route", req.Route, "error", err)
		}
	}
}

func firstStatic(routes []manifest.RouteSpec) (string, bool) {
	for _, rs := range routes {
		if !strings.ContainsAny(rs.When, ":*") {
			return rs.When, true
		}
	}
	return "", false
}

func (a *app) close() {
	a.dialogs.Close()
	a.notifier.Close()
	a.router.Close()
}

// newS3Client builds a client for the template bucket. Credentials come
// from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY; without them requests
// are anonymous, which suits public buckets.
func newS3Client(sc config.StorageConfig) *s3.Client {
	o := s3.Options{Region: sc.Region}
	if sc.Endpoint != "" {
		o.BaseEndpoint = aws.String(sc.Endpoint)
		o.UsePathStyle = true
	}
	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		creds := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		o.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	} else {
		o.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(o)
}

// handler returns the HTTP handler of the server and a function stopping
// the devtools stream.
func (a *app) handler() (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	stop := func() {}
	if a.cfg.DevtoolsEnabled() {
		tools := devtools.New(a.router,
			devtools.WithDialogs(a.dialogs),
			devtools.WithNotifier(a.notifier),
			devtools.WithFlags(a.flags),
			devtools.WithGatherer(a.registry),
			devtools.WithLogger(a.logger.With("component", "devtools")),
		)
		stop = tools.Start()
		r.Mount(a.cfg.Server.Devtools, tools.Handler())
	}
	return r, stop
}
