package devtools

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/area"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/dialog"
	"github.com/vango-dev/area/pkg/manifest"
	"github.com/vango-dev/area/pkg/notify"
	"github.com/vango-dev/area/pkg/reactive"
)

// Option configures a Server.
type Option func(*Server)

// WithDialogs exposes a dialog service.
func WithDialogs(s *dialog.Service) Option {
	return func(srv *Server) {
		srv.dialogs = s
	}
}

// WithNotifier streams notifications to WebSocket clients.
func WithNotifier(n *notify.Notifier) Option {
	return func(srv *Server) {
		srv.notifier = n
	}
}

// WithFlags exposes named guard flags for toggling.
func WithFlags(f *manifest.Flags) Option {
	return func(srv *Server) {
		srv.flags = f
	}
}

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(srv *Server) {
		srv.gatherer = g
	}
}

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithTimeout bounds navigations triggered over HTTP.
func WithTimeout(d time.Duration) Option {
	return func(srv *Server) {
		srv.timeout = d
	}
}

// Server inspects and drives a router over HTTP.
type Server struct {
	router   *area.Router
	dialogs  *dialog.Service
	notifier *notify.Notifier
	flags    *manifest.Flags
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	timeout  time.Duration
	hub      *Hub
}

// New creates a Server for r.
func New(r *area.Router, opts ...Option) *Server {
	s := &Server{
		router:   r,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default().With("component", "devtools"),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger, s.hello)
	return s
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start forwards router, dialog and notification activity to WebSocket
// clients. The returned function stops forwarding and disconnects clients.
func (s *Server) Start() func() {
	var subs []reactive.Subscription

	// Current replays the latest snapshot; clients already got it in hello.
	first := true
	subs = append(subs, s.router.Current().Subscribe(reactive.Func(func(snap area.Snapshot) {
		if first {
			first = false
			return
		}
		v := snapshotView(snap)
		s.hub.Broadcast(Message{Type: MessageSnapshot, Time: time.Now(), Snapshot: &v})
	})))

	subs = append(subs, s.router.Redirects().Subscribe(reactive.Func(func(rd area.Redirect) {
		v := redirectView(rd)
		s.hub.Broadcast(Message{Type: MessageRedirect, Time: time.Now(), Redirect: &v})
	})))

	if s.dialogs != nil {
		subs = append(subs, s.dialogs.Stack().Subscribe(reactive.Func(func(infos []dialog.Info) {
			s.hub.Broadcast(Message{Type: MessageDialogs, Time: time.Now(), Dialogs: infos})
		})))
	}

	if s.notifier != nil {
		subs = append(subs, s.notifier.Events().Subscribe(reactive.Func(func(n notify.Notification) {
			s.hub.Broadcast(Message{Type: MessageNotification, Time: time.Now(), Notification: &n})
		})))
	}

	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		s.hub.Close()
	}
}

// hello returns the state sent to a client when it connects.
func (s *Server) hello() []Message {
	v := snapshotView(s.router.Snapshot())
	msgs := []Message{{Type: MessageSnapshot, Time: time.Now(), Snapshot: &v}}
	if s.dialogs != nil {
		msgs = append(msgs, Message{Type: MessageDialogs, Time: time.Now(), Dialogs: s.dialogs.List()})
	}
	return msgs
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/areas", s.handleAreas)
	r.Route("/areas/{area}", func(r chi.Router) {
		r.Get("/", s.handleArea)
		r.Post("/push", s.handlePush)
		r.Post("/pop", s.handlePop)
		r.Post("/forward", s.handleForward)
	})

	r.Get("/dialogs", s.handleDialogs)
	r.Post("/dialogs/dismiss", s.handleDismiss)
	r.Post("/dialogs/{id}/resolve", s.handleResolve)

	r.Get("/flags", s.handleFlags)
	r.Put("/flags/{name}", s.handleSetFlag)

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Handle("/ws", s.hub)
	return r
}

func (s *Server) handleAreas(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, snapshotView(s.router.Snapshot()))
}

func (s *Server) handleArea(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "area")
	if !slices.Contains(s.router.Areas(), name) {
		s.writeError(w, errors.New("A001").WithDetailf("no area %q", name))
		return
	}

	v := AreaView{Name: name, State: s.router.State(name).String(), Routes: []string{}}
	if e, ok := s.router.Entry(name); ok {
		ev := entryView(e)
		v.Entry = &ev
	}
	for _, def := range s.router.Table(name).Definitions() {
		v.Routes = append(v.Routes, def.When)
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePush(w http.ResponseWriter, req *http.Request) {
	var body PushRequest
	if err := decode(req, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	r := area.Request{
		Area:    chi.URLParam(req, "area"),
		Route:   body.Route,
		Params:  body.Params,
		Replace: body.Replace,
	}
	if body.Tag != "" {
		r.Component = component.Tag(body.Tag)
	}

	ctx, cancel := s.context(req)
	defer cancel()
	e, err := s.router.Push(ctx, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entryView(e))
}

func (s *Server) handlePop(w http.ResponseWriter, req *http.Request) {
	s.step(w, req, s.router.Pop)
}

func (s *Server) handleForward(w http.ResponseWriter, req *http.Request) {
	s.step(w, req, s.router.Forward)
}

// step runs a history navigation and writes the resulting entry, or null
// when the area ends up idle.
func (s *Server) step(w http.ResponseWriter, req *http.Request, fn func(context.Context, string) (*area.Entry, error)) {
	ctx, cancel := s.context(req)
	defer cancel()

	e, err := fn(ctx, chi.URLParam(req, "area"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if e == nil {
		s.writeJSON(w, http.StatusOK, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, entryView(*e))
}

func (s *Server) handleDialogs(w http.ResponseWriter, _ *http.Request) {
	if s.dialogs == nil {
		s.writeJSON(w, http.StatusOK, []dialog.Info{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.dialogs.List())
}

func (s *Server) handleDismiss(w http.ResponseWriter, _ *http.Request) {
	if s.dialogs == nil {
		s.writeJSON(w, http.StatusOK, map[string]bool{"dismissed": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"dismissed": s.dialogs.Dismiss()})
}

func (s *Server) handleResolve(w http.ResponseWriter, req *http.Request) {
	var body ResolveRequest
	if err := decode(req, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if s.dialogs == nil {
		s.writeError(w, errors.New("A042"))
		return
	}
	if err := s.dialogs.Resolve(chi.URLParam(req, "id"), body.Result); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFlags(w http.ResponseWriter, _ *http.Request) {
	out := map[string]bool{}
	if s.flags != nil {
		for _, name := range s.flags.Names() {
			out[name], _ = s.flags.Get(name)
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetFlag(w http.ResponseWriter, req *http.Request) {
	var body FlagRequest
	if err := decode(req, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if s.flags == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"message": "no flags configured"})
		return
	}
	name := chi.URLParam(req, "name")
	s.flags.Set(name, body.Value)
	s.logger.Info("flag set", "flag", name, "value", body.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) context(req *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(req.Context())
	}
	return context.WithTimeout(req.Context(), s.timeout)
}

// decode reads an optional JSON body.
func decode(req *http.Request, v any) error {
	err := json.NewDecoder(req.Body).Decode(v)
	if stderrors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes err as JSON with a status derived from its code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	var ae *errors.Error
	if !stderrors.As(err, &ae) {
		s.writeJSON(w, status, map[string]string{"message": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, ae.FormatJSON()+"\n")
}

func statusOf(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout
	}
	switch errors.CodeOf(err) {
	case "A001":
		return http.StatusNotFound
	case "A020":
		return http.StatusForbidden
	case "A003", "A006", "A041":
		return http.StatusConflict
	case "A002", "A004", "A010", "A011", "A040":
		return http.StatusBadRequest
	case "A042":
		return http.StatusGone
	case "A005":
		return http.StatusServiceUnavailable
	case "A030":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
