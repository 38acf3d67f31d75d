package area

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/guard"
	"github.com/vango-dev/area/pkg/history"
	"github.com/vango-dev/area/pkg/reactive"
	"github.com/vango-dev/area/pkg/route"
)

var (
	// ErrNotFound is returned when a route key resolves to nothing and the
	// area has no default.
	ErrNotFound = route.ErrNotFound

	// ErrSuperseded is returned by a navigation overtaken by a newer
	// navigation of the same area.
	ErrSuperseded = errors.New("A003")

	// ErrMissingArea is returned for requests without an area name.
	ErrMissingArea = errors.New("A004")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("A005")

	// ErrAborted is returned when middleware ends a navigation without
	// calling next and without an error of its own.
	ErrAborted = errors.New("A006")

	// ErrDenied is returned when a guard denies a navigation.
	ErrDenied = guard.ErrDenied
)

// areaState is the routing state of one area.
type areaState struct {
	name     string
	table    *route.Table
	fallback component.Descriptor
	history  *history.Stack[Entry]

	// token identifies the latest navigation issued for the area.
	token uint64

	// pending counts navigations in flight.
	pending int
}

// target is a resolved navigation target.
type target struct {
	route   string
	pattern string
	rest    string
	desc    component.Descriptor
	params  map[string]string
	guard   guard.Guard
}

// Router owns the state of every area. It is the only writer of that
// state; everything else observes it through Current and On.
type Router struct {
	mu     sync.Mutex
	areas  map[string]*areaState
	seq    uint64
	closed bool

	current   *reactive.BehaviorSubject[Snapshot]
	redirects *reactive.Subject[Redirect]

	// outbox holds committed snapshots not yet emitted, in commit order.
	outbox   []Snapshot
	flushing bool

	handlers     []func(Redirect)
	middleware   []Middleware
	logger       *slog.Logger
	historyLimit int
}

// New creates a router with no areas.
func New(opts ...Option) *Router {
	r := &Router{
		areas:     make(map[string]*areaState),
		current:   reactive.NewBehaviorSubject(Snapshot{}),
		redirects: reactive.NewSubject[Redirect](),
		logger:    slog.Default().With("component", "area"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// areaLocked returns the named area, creating it if needed.
func (r *Router) areaLocked(name string) *areaState {
	a, ok := r.areas[name]
	if !ok {
		a = &areaState{
			name:    name,
			table:   route.NewTable(),
			history: history.New[Entry](r.historyLimit),
		}
		r.areas[name] = a
	}
	return a
}

// =============================================================================
// Area configuration
// =============================================================================

// Table returns the route table of an area, creating the area if needed.
func (r *Router) Table(name string) *route.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.areaLocked(name).table
}

// Define registers route definitions for an area.
func (r *Router) Define(name string, defs ...route.Definition) error {
	t := r.Table(name)
	for _, def := range defs {
		if err := t.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Replace swaps the whole route table of an area.
func (r *Router) Replace(name string, defs ...route.Definition) error {
	return r.Table(name).Replace(defs...)
}

// Remove deletes one route of an area.
func (r *Router) Remove(name, when string) bool {
	return r.Table(name).Remove(when)
}

// SetDefault sets the component mounted when a route key of the area
// resolves to nothing. A zero descriptor clears the default.
func (r *Router) SetDefault(name string, d component.Descriptor) error {
	if !d.IsZero() {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areaLocked(name).fallback = d
	return nil
}

// Areas returns the names of all known areas, sorted.
func (r *Router) Areas() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.areas))
	for name := range r.areas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preload starts loading every lazy component routed in an area.
func (r *Router) Preload(name string) {
	for _, def := range r.Table(name).Definitions() {
		if def.Component.Kind == component.KindLazy {
			def.Component.Lazy.Preload()
		}
	}
}

// =============================================================================
// Navigation
// =============================================================================

// Push navigates an area.
//
// A Route key, or a tag descriptor whose name matches a When key, is
// resolved through the area's table; any other descriptor is mounted
// directly. Route keys that match nothing fall back to the area's default.
// Without a default the area keeps its state and ErrNotFound is returned.
func (r *Router) Push(ctx context.Context, req Request) (Entry, error) {
	if req.Area == "" {
		return Entry{}, errors.New("A004")
	}

	a, token, from, err := r.begin(req.Area)
	if err != nil {
		return Entry{}, err
	}
	defer r.end(a)

	t, err := r.resolve(a, req)
	if err != nil {
		return Entry{}, err
	}

	nav := &Navigation{
		Op:        OpPush,
		Area:      req.Area,
		Route:     t.route,
		Component: t.desc,
		Params:    t.params,
		Replace:   req.Replace,
		From:      from,
	}
	err = r.run(ctx, a, token, nav, t, func(e Entry) {
		if req.Replace {
			a.history.Replace(e)
		} else {
			a.history.Push(e)
		}
	})
	if err != nil {
		return Entry{}, err
	}
	return *nav.Entry, nil
}

// Pop restores the previous entry of an area. The restored route's guard
// is evaluated again. With no history the area falls back to its default,
// or becomes idle; an idle area stays idle. The returned entry is nil when
// the area ends up idle.
func (r *Router) Pop(ctx context.Context, name string) (*Entry, error) {
	if name == "" {
		return nil, errors.New("A004")
	}

	a, token, from, err := r.begin(name)
	if err != nil {
		return nil, err
	}
	defer r.end(a)

	if prev, ok := a.history.PeekBack(); ok {
		t := r.restore(a, prev)
		nav := &Navigation{Op: OpPop, Area: name, Route: t.route, Component: t.desc, Params: t.params, From: from}
		err := r.run(ctx, a, token, nav, t, func(e Entry) {
			a.history.Back()
			a.history.Replace(e)
		})
		if err != nil {
			return nil, err
		}
		return nav.Entry, nil
	}

	if from == nil {
		return nil, nil
	}

	r.mu.Lock()
	fallback := a.fallback
	r.mu.Unlock()

	if fallback.IsZero() {
		if err := r.idle(a, token); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if from.Route == "" && component.Equal(from.Component, fallback) {
		return from, nil
	}

	t := target{desc: fallback}
	nav := &Navigation{Op: OpPop, Area: name, Component: fallback, From: from}
	if err := r.run(ctx, a, token, nav, t, a.history.Replace); err != nil {
		return nil, err
	}
	return nav.Entry, nil
}

// Forward re-applies the entry left by the last Pop. Without one it
// returns the current entry unchanged.
func (r *Router) Forward(ctx context.Context, name string) (*Entry, error) {
	if name == "" {
		return nil, errors.New("A004")
	}

	a, token, from, err := r.begin(name)
	if err != nil {
		return nil, err
	}
	defer r.end(a)

	next, ok := a.history.PeekForward()
	if !ok {
		return from, nil
	}

	t := r.restore(a, next)
	nav := &Navigation{Op: OpForward, Area: name, Route: t.route, Component: t.desc, Params: t.params, From: from}
	err = r.run(ctx, a, token, nav, t, func(e Entry) {
		a.history.Forward()
		a.history.Replace(e)
	})
	if err != nil {
		return nil, err
	}
	return nav.Entry, nil
}

// begin registers a navigation of the named area and returns its token.
func (r *Router) begin(name string) (*areaState, uint64, *Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, 0, nil, errors.New("A005")
	}
	a := r.areaLocked(name)
	a.token++
	a.pending++

	var from *Entry
	if e, ok := a.history.Current(); ok {
		from = &e
	}
	return a, a.token, from, nil
}

// end marks a navigation as finished.
func (r *Router) end(a *areaState) {
	r.mu.Lock()
	a.pending--
	r.mu.Unlock()
}

// resolve turns a request into a target.
func (r *Router) resolve(a *areaState, req Request) (target, error) {
	key := req.Route
	if key == "" && req.Component.Kind == component.KindTag && a.table.Has(req.Component.Name) {
		key = req.Component.Name
	}

	if key != "" {
		if m, ok := a.table.Match(key); ok {
			return target{
				route:   key,
				pattern: m.Definition.When,
				rest:    m.Rest,
				desc:    m.Definition.Component,
				params:  mergeParams(m.Params, req.Params),
				guard:   m.Definition.Guard,
			}, nil
		}
		return r.fallback(a, key, req.Params)
	}

	if req.Component.IsZero() {
		return target{}, errors.New("A011").WithDetailf("navigation of area %q has neither a route nor a component", a.name)
	}
	if err := req.Component.Validate(); err != nil {
		return target{}, err
	}
	return target{desc: req.Component, params: mergeParams(nil, req.Params)}, nil
}

// fallback resolves an unmatched key to the area's default.
func (r *Router) fallback(a *areaState, key string, params map[string]string) (target, error) {
	r.mu.Lock()
	def := a.fallback
	r.mu.Unlock()

	if def.IsZero() {
		r.logger.Warn("route not found", "area", a.name, "route", key)
		return target{}, errors.New("A001").WithDetailf("no route %q in area %q", key, a.name)
	}

	r.logger.Debug("route not found, using default", "area", a.name, "route", key, "default", def.String())
	return target{route: key, desc: def, params: mergeParams(nil, params)}, nil
}

// restore builds the target of a history entry. The guard comes from the
// table as it is now, so a route whose guard changed is checked again.
func (r *Router) restore(a *areaState, e Entry) target {
	t := target{
		route:   e.Route,
		pattern: e.Pattern,
		rest:    e.Rest,
		desc:    e.Component,
		params:  e.Params,
	}
	if e.Pattern != "" {
		if def, err := a.table.Resolve(e.Pattern); err == nil {
			t.guard = def.Guard
		}
	}
	return t
}

// run passes a navigation through middleware, the guard and lazy loading,
// then commits it with apply. A nil error means nav.Entry is set.
func (r *Router) run(ctx context.Context, a *areaState, token uint64, nav *Navigation, t target, apply func(Entry)) error {
	err := Compose(ctx, nav, r.middleware, func(ctx context.Context) error {
		logger := r.logger.With("area", nav.Area, "route", nav.Route, "op", string(nav.Op))

		decision := guard.Evaluate(ctx, t.guard, logger)
		if decision.Cancelled {
			return decision.Err
		}
		if !decision.Allow {
			if !r.latest(a, token) {
				return r.superseded(logger, nav)
			}
			r.redirect(Redirect{
				Area:   nav.Area,
				Route:  nav.Route,
				From:   routeOf(nav.From),
				Reason: decision.Err,
			})
			err := errors.New("A020").WithDetailf("navigation of area %q to %q denied", nav.Area, nav.Route)
			if decision.Err != nil {
				err = err.Wrap(decision.Err)
			}
			return err
		}

		if err := component.Prepare(ctx, t.desc); err != nil {
			logger.Error("component failed to load", "error", err)
			return err
		}

		entry, err := r.commit(a, token, t, apply)
		if err != nil {
			if errors.CodeOf(err) == "A003" {
				return r.superseded(logger, nav)
			}
			return err
		}
		nav.Entry = &entry
		return nil
	})
	if err == nil && nav.Entry == nil {
		r.logger.Warn("navigation aborted by middleware", "area", nav.Area, "route", nav.Route, "op", string(nav.Op))
		return errors.New("A006").WithDetailf("navigation of area %q to %q was not committed", nav.Area, nav.Route)
	}
	return err
}

// commit applies a navigation if it is still the latest one of its area.
func (r *Router) commit(a *areaState, token uint64, t target, apply func(Entry)) (Entry, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Entry{}, errors.New("A005")
	}
	if !r.latestLocked(a, token) {
		r.mu.Unlock()
		return Entry{}, errors.New("A003")
	}

	r.seq++
	e := Entry{
		Area:      a.name,
		Route:     t.route,
		Pattern:   t.pattern,
		Rest:      t.rest,
		Component: t.desc,
		Params:    t.params,
		Seq:       r.seq,
	}
	apply(e)
	r.outbox = append(r.outbox, r.snapshotLocked())
	r.mu.Unlock()

	r.flush()
	return e, nil
}

// idle removes the entry of an area.
func (r *Router) idle(a *areaState, token uint64) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New("A005")
	}
	if !r.latestLocked(a, token) {
		r.mu.Unlock()
		return errors.New("A003").WithDetailf("pop of area %q", a.name)
	}
	a.history.Clear()
	r.outbox = append(r.outbox, r.snapshotLocked())
	r.mu.Unlock()

	r.flush()
	return nil
}

func (r *Router) latest(a *areaState, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latestLocked(a, token)
}

// latestLocked reports whether token is the newest navigation of a and
// a has not been dropped by Reset.
func (r *Router) latestLocked(a *areaState, token uint64) bool {
	return a.token == token && r.areas[a.name] == a
}

func (r *Router) superseded(logger *slog.Logger, nav *Navigation) error {
	logger.Debug("navigation superseded")
	return errors.New("A003").WithDetailf("navigation of area %q to %q", nav.Area, nav.Route)
}

// flush emits queued snapshots in commit order. Only one goroutine
// flushes at a time; the others leave their snapshots to it.
func (r *Router) flush() {
	r.mu.Lock()
	if r.flushing {
		r.mu.Unlock()
		return
	}
	r.flushing = true

	defer func() {
		if rec := recover(); rec != nil {
			r.mu.Lock()
			r.flushing = false
			r.outbox = nil
			r.mu.Unlock()
			panic(rec)
		}
	}()

	for len(r.outbox) > 0 {
		snap := r.outbox[0]
		r.outbox = r.outbox[1:]
		r.mu.Unlock()
		r.current.Next(snap)
		r.mu.Lock()
	}
	r.flushing = false
	r.mu.Unlock()
}

// snapshotLocked copies the current entry of every area.
func (r *Router) snapshotLocked() Snapshot {
	entries := make(map[string]Entry, len(r.areas))
	for name, a := range r.areas {
		if e, ok := a.history.Current(); ok {
			entries[name] = e
		}
	}
	return Snapshot{entries: entries}
}

// redirect publishes a denied navigation.
func (r *Router) redirect(rd Redirect) {
	r.logger.Info("navigation denied", "area", rd.Area, "route", rd.Route, "from", rd.From)

	r.mu.Lock()
	handlers := make([]func(Redirect), len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.Unlock()

	r.redirects.Next(rd)
	for _, h := range handlers {
		h(rd)
	}
}

// =============================================================================
// Observation
// =============================================================================

// Current emits a snapshot of every area after each commit. New
// subscribers receive the latest snapshot first.
func (r *Router) Current() reactive.Observable[Snapshot] {
	return r.current
}

// Snapshot returns the committed state of every area.
func (r *Router) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Entry returns the current entry of an area.
func (r *Router) Entry(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.areas[name]
	if !ok {
		return Entry{}, false
	}
	return a.history.Current()
}

// On returns the entries of one area. It emits when the area's entry
// changes, nil when the area becomes idle, and nothing for an area that
// has never been mounted.
func (r *Router) On(name string) reactive.Observable[*Entry] {
	return reactive.ObservableFunc[*Entry](func(o reactive.Observer[*Entry]) reactive.Subscription {
		var (
			mu   sync.Mutex
			last uint64
		)
		return r.current.Subscribe(reactive.Observer[Snapshot]{
			Next: func(s Snapshot) {
				e, ok := s.Get(name)
				var seq uint64
				if ok {
					seq = e.Seq
				}

				mu.Lock()
				if seq == last {
					mu.Unlock()
					return
				}
				last = seq
				mu.Unlock()

				if o.Next == nil {
					return
				}
				if !ok {
					o.Next(nil)
					return
				}
				o.Next(&e)
			},
			Error:    o.Error,
			Complete: o.Complete,
		})
	})
}

// Redirects emits every navigation denied by a guard.
func (r *Router) Redirects() reactive.Observable[Redirect] {
	return r.redirects
}

// OnRedirect registers fn for denied navigations and returns a function
// removing it.
func (r *Router) OnRedirect(fn func(Redirect)) func() {
	sub := r.redirects.Subscribe(reactive.Func(fn))
	return sub.Unsubscribe
}

// State returns the lifecycle state of an area.
func (r *Router) State(name string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.areas[name]
	if !ok {
		return Idle
	}
	if a.pending > 0 {
		return Resolving
	}
	if _, ok := a.history.Current(); ok {
		return Mounted
	}
	return Idle
}

// =============================================================================
// Lifecycle
// =============================================================================

// Reset forgets every area, including route tables and defaults.
// Navigations in flight are superseded.
func (r *Router) Reset() {
	r.mu.Lock()
	r.areas = make(map[string]*areaState)
	r.outbox = append(r.outbox, Snapshot{})
	r.mu.Unlock()

	r.flush()
}

// Close completes Current and Redirects. Navigations fail with ErrClosed
// afterwards.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.flush()
	r.current.Complete()
	r.redirects.Complete()
}

func routeOf(e *Entry) string {
	if e == nil {
		return ""
	}
	if e.Route != "" {
		return e.Route
	}
	return e.Component.Name
}

// mergeParams copies matched params and overlays explicit ones.
func mergeParams(matched, explicit map[string]string) map[string]string {
	if len(matched) == 0 && len(explicit) == 0 {
		return nil
	}
	out := make(map[string]string, len(matched)+len(explicit))
	for k, v := range matched {
		out[k] = v
	}
	for k, v := range explicit {
		out[k] = v
	}
	return out
}
