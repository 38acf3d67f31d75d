package area

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/guard"
	"github.com/vango-dev/area/pkg/lazy"
	"github.com/vango-dev/area/pkg/reactive"
	"github.com/vango-dev/area/pkg/route"
)

type page struct {
	tag    string
	params map[string]string
}

func (p *page) TagName() string { return p.tag }

func ctor(tag string) component.Descriptor {
	return component.Ctor(tag, func(params map[string]string) component.Element {
		return &page{tag: tag, params: params}
	})
}

func newRouter(t *testing.T, opts ...Option) *Router {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := New(append([]Option{WithLogger(quiet)}, opts...)...)
	t.Cleanup(r.Close)
	return r
}

// recorder collects the values of an observable.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func record[T any](t *testing.T, obs reactive.Observable[T]) *recorder[T] {
	t.Helper()
	rec := &recorder[T]{}
	sub := obs.Subscribe(reactive.Func(func(v T) {
		rec.mu.Lock()
		rec.values = append(rec.values, v)
		rec.mu.Unlock()
	}))
	t.Cleanup(sub.Unsubscribe)
	return rec
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

func TestPushTableDriven(t *testing.T) {
	r := newRouter(t)
	publicPage := ctor("public-page")
	if err := r.Define("demo", route.Definition{When: "public-page", Component: publicPage}); err != nil {
		t.Fatal(err)
	}

	entries := record(t, r.On("demo"))

	e, err := r.Push(context.Background(), Request{Area: "demo", Component: component.Tag("public-page")})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if e.Area != "demo" || !component.Equal(e.Component, publicPage) {
		t.Errorf("Push() = %+v", e)
	}

	got := entries.all()
	if len(got) != 1 {
		t.Fatalf("On(demo) emitted %d values, want 1", len(got))
	}
	if got[0] == nil || !component.Equal(got[0].Component, publicPage) || got[0].Area != "demo" {
		t.Errorf("On(demo) = %+v", got[0])
	}
	if got[0].Route != "public-page" || got[0].Pattern != "public-page" {
		t.Errorf("Route/Pattern = %q/%q", got[0].Route, got[0].Pattern)
	}
	if r.State("demo") != Mounted {
		t.Errorf("State = %v, want mounted", r.State("demo"))
	}
}

func TestPushGuardDenied(t *testing.T) {
	var handled []Redirect
	r := newRouter(t, WithRedirectHandler(func(rd Redirect) { handled = append(handled, rd) }))

	_ = r.Define("demo",
		route.Definition{When: "public-page", Component: ctor("public-page")},
		route.Definition{When: "protected-page", Component: ctor("protected-page"), Guard: guard.FromObservable(reactive.Of(false))},
	)
	ctx := context.Background()
	if _, err := r.Push(ctx, Request{Area: "demo", Component: component.Tag("public-page")}); err != nil {
		t.Fatal(err)
	}

	before := r.Snapshot()
	entries := record(t, r.On("demo"))
	redirects := record(t, r.Redirects())

	_, err := r.Push(ctx, Request{Area: "demo", Component: component.Tag("protected-page")})
	if !stderrors.Is(err, ErrDenied) {
		t.Fatalf("Push err = %v, want ErrDenied", err)
	}

	after, _ := r.Snapshot().Get("demo")
	prior, _ := before.Get("demo")
	if after.Seq != prior.Seq || after.Route != "public-page" {
		t.Errorf("denied push changed the area: %+v", after)
	}

	// On replays the current entry once on subscribe, then nothing.
	if got := entries.all(); len(got) != 1 {
		t.Errorf("On(demo) emitted %d values, want 1", len(got))
	}

	rds := redirects.all()
	if len(rds) != 1 {
		t.Fatalf("got %d redirects, want 1", len(rds))
	}
	want := Redirect{Area: "demo", Route: "protected-page", From: "public-page"}
	if rds[0] != want {
		t.Errorf("redirect = %+v, want %+v", rds[0], want)
	}
	if len(handled) != 1 || handled[0] != want {
		t.Errorf("handler got %+v", handled)
	}
}

func TestPushGuardFailureFailsClosed(t *testing.T) {
	r := newRouter(t)
	boom := stderrors.New("auth backend down")
	_ = r.Define("main", route.Definition{
		When:      "admin",
		Component: ctor("admin"),
		Guard:     guard.FromObservable(reactive.Fail[bool](boom)),
	})
	redirects := record(t, r.Redirects())

	_, err := r.Push(context.Background(), Request{Area: "main", Route: "admin"})
	if !stderrors.Is(err, ErrDenied) || !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrDenied wrapping cause", err)
	}
	if _, ok := r.Entry("main"); ok {
		t.Error("failed guard mounted the route")
	}

	rds := redirects.all()
	if len(rds) != 1 || rds[0].Reason == nil {
		t.Errorf("redirects = %+v, want one with a reason", rds)
	}
}

func TestPushGuardAllowed(t *testing.T) {
	r := newRouter(t)
	loggedIn := reactive.NewBehaviorSubject(true)
	_ = r.Define("demo", route.Definition{
		When:      "protected-page",
		Component: ctor("protected-page"),
		Guard:     guard.FromObservable(loggedIn),
	})
	entries := record(t, r.On("demo"))

	if _, err := r.Push(context.Background(), Request{Area: "demo", Component: component.Tag("protected-page")}); err != nil {
		t.Fatal(err)
	}

	got := entries.all()
	if len(got) != 1 || got[0] == nil || got[0].Route != "protected-page" {
		t.Fatalf("On(demo) = %+v, want one protected-page entry", got)
	}
	if loggedIn.Len() != 0 {
		t.Error("guard kept its subscription")
	}
}

func TestPushLazyPreloaded(t *testing.T) {
	r := newRouter(t)
	var fetches atomic.Int32
	users := lazy.Component(func(context.Context) (component.Constructor, error) {
		fetches.Add(1)
		return func(map[string]string) component.Element { return &page{tag: "users-page"} }, nil
	})

	users.Preload()
	if _, err := users.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := r.Push(ctx, Request{Area: "main", Component: component.FromLazy(users)}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Push(ctx, Request{Area: "main", Component: ctor("home")}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Push(ctx, Request{Area: "main", Component: component.FromLazy(users)}); err != nil {
		t.Fatal(err)
	}

	if n := fetches.Load(); n != 1 {
		t.Errorf("loader ran %d times, want 1", n)
	}
	if users.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", users.Calls())
	}
}

func TestPushLazyFailureKeepsPriorEntry(t *testing.T) {
	r := newRouter(t)
	var fail atomic.Bool
	fail.Store(true)
	reports := lazy.Component(func(context.Context) (component.Constructor, error) {
		if fail.Load() {
			return nil, stderrors.New("chunk missing")
		}
		return func(map[string]string) component.Element { return &page{tag: "reports"} }, nil
	})
	_ = r.Define("main",
		route.Definition{When: "home", Component: ctor("home")},
		route.Definition{When: "reports", Component: component.FromLazy(reports)},
	)

	ctx := context.Background()
	if _, err := r.Push(ctx, Request{Area: "main", Route: "home"}); err != nil {
		t.Fatal(err)
	}

	_, err := r.Push(ctx, Request{Area: "main", Route: "reports"})
	if !stderrors.Is(err, component.ErrLoad) {
		t.Fatalf("err = %v, want ErrLoad", err)
	}
	if e, _ := r.Entry("main"); e.Route != "home" {
		t.Errorf("area left at %q, want home", e.Route)
	}
	if r.State("main") != Mounted {
		t.Errorf("State = %v, want mounted", r.State("main"))
	}

	fail.Store(false)
	if _, err := r.Push(ctx, Request{Area: "main", Route: "reports"}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if e, _ := r.Entry("main"); e.Route != "reports" {
		t.Errorf("area at %q after retry, want reports", e.Route)
	}
}

func TestPushSequentialOrder(t *testing.T) {
	r := newRouter(t)
	entries := record(t, r.On("x"))
	ctx := context.Background()

	first, second := ctor("first"), ctor("second")
	if _, err := r.Push(ctx, Request{Area: "x", Component: first}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Push(ctx, Request{Area: "x", Component: second}); err != nil {
		t.Fatal(err)
	}

	e, ok := r.Snapshot().Get("x")
	if !ok || !component.Equal(e.Component, second) {
		t.Errorf("final entry = %+v, want second", e)
	}
	if r.Snapshot().Len() != 1 {
		t.Errorf("snapshot has %d areas, want 1", r.Snapshot().Len())
	}

	got := entries.all()
	if len(got) != 2 {
		t.Fatalf("On(x) emitted %d values, want 2", len(got))
	}
	if !component.Equal(got[0].Component, first) || !component.Equal(got[1].Component, second) {
		t.Errorf("emission order = %v, %v", got[0].Component, got[1].Component)
	}
	if got[0].Seq >= got[1].Seq {
		t.Errorf("Seq not increasing: %d, %d", got[0].Seq, got[1].Seq)
	}
}

func TestPushDirectDescriptors(t *testing.T) {
	r := newRouter(t)
	panel := &page{tag: "side-panel"}
	ctx := context.Background()

	tests := []struct {
		name string
		d    component.Descriptor
	}{
		{"instance", component.Instance(panel)},
		{"unrouted tag", component.Tag("user-menu")},
		{"ctor", ctor("settings")},
		{"template", component.Inline(component.TemplateFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, "<p>hi</p>")
			return err
		}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Push(ctx, Request{Area: "overlays", Component: tt.d})
			if err != nil {
				t.Fatal(err)
			}
			if e.Route != "" || !component.Equal(e.Component, tt.d) {
				t.Errorf("entry = %+v", e)
			}
		})
	}
}

func TestPushInvalid(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	if _, err := r.Push(ctx, Request{Component: ctor("x")}); !stderrors.Is(err, ErrMissingArea) {
		t.Errorf("missing area err = %v", err)
	}
	if _, err := r.Push(ctx, Request{Area: "main"}); !stderrors.Is(err, component.ErrInvalid) {
		t.Errorf("empty request err = %v", err)
	}
	if r.State("main") != Idle {
		t.Errorf("State = %v, want idle", r.State("main"))
	}
}

func TestPushNotFound(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	_ = r.Define("main", route.Definition{When: "home", Component: ctor("home")})
	if _, err := r.Push(ctx, Request{Area: "main", Route: "home"}); err != nil {
		t.Fatal(err)
	}

	_, err := r.Push(ctx, Request{Area: "main", Route: "missing"})
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if e, _ := r.Entry("main"); e.Route != "home" {
		t.Errorf("area moved to %q", e.Route)
	}

	notFound := ctor("not-found")
	if err := r.SetDefault("main", notFound); err != nil {
		t.Fatal(err)
	}
	e, err := r.Push(ctx, Request{Area: "main", Route: "missing", Params: map[string]string{"q": "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if !component.Equal(e.Component, notFound) || e.Route != "missing" || e.Params["q"] != "1" {
		t.Errorf("default entry = %+v", e)
	}
}

func TestPushParams(t *testing.T) {
	r := newRouter(t)
	_ = r.Define("main",
		route.Definition{When: "users/:id", Component: ctor("user")},
		route.Definition{When: "docs", Component: ctor("docs")},
	)
	ctx := context.Background()

	e, err := r.Push(ctx, Request{Area: "main", Route: "users/42", Params: map[string]string{"tab": "posts"}})
	if err != nil {
		t.Fatal(err)
	}
	if e.Pattern != "users/:id" || e.Params["id"] != "42" || e.Params["tab"] != "posts" {
		t.Errorf("entry = %+v", e)
	}

	e, err = r.Push(ctx, Request{Area: "main", Route: "docs/guide/install"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Pattern != "docs" || e.Rest != "guide/install" {
		t.Errorf("entry = %+v", e)
	}
}

func TestPushSupersededByNewer(t *testing.T) {
	r := newRouter(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	_ = r.Define("main", route.Definition{
		When:      "slow",
		Component: ctor("slow"),
		Guard: func(ctx context.Context) (bool, error) {
			close(entered)
			select {
			case <-release:
				return true, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		},
	})
	entries := record(t, r.On("main"))

	ctx := context.Background()
	errc := make(chan error, 1)
	go func() {
		_, err := r.Push(ctx, Request{Area: "main", Route: "slow"})
		errc <- err
	}()

	<-entered
	if r.State("main") != Resolving {
		t.Errorf("State = %v, want resolving", r.State("main"))
	}

	fast := ctor("fast")
	if _, err := r.Push(ctx, Request{Area: "main", Component: fast}); err != nil {
		t.Fatal(err)
	}
	close(release)

	if err := <-errc; !stderrors.Is(err, ErrSuperseded) {
		t.Fatalf("slow push err = %v, want ErrSuperseded", err)
	}
	if e, _ := r.Entry("main"); !component.Equal(e.Component, fast) {
		t.Errorf("final entry = %+v, want fast", e)
	}
	if got := entries.all(); len(got) != 1 {
		t.Errorf("On(main) emitted %d values, want 1", len(got))
	}
	if r.State("main") != Mounted {
		t.Errorf("State = %v, want mounted", r.State("main"))
	}
}

func TestPushCancelled(t *testing.T) {
	r := newRouter(t)
	_ = r.Define("main", route.Definition{
		When:      "pending",
		Component: ctor("pending"),
		Guard:     guard.FromObservable(reactive.Never[bool]()),
	})
	redirects := record(t, r.Redirects())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Push(ctx, Request{Area: "main", Route: "pending"})
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(redirects.all()) != 0 {
		t.Error("cancelled navigation published a redirect")
	}
}

func TestPopAndForward(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_ = r.Define("main", route.Definition{When: name, Component: ctor(name)})
	}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := r.Push(ctx, Request{Area: "main", Route: name}); err != nil {
			t.Fatal(err)
		}
	}
	entries := record(t, r.On("main"))

	steps := []struct {
		op   func(context.Context, string) (*Entry, error)
		want string
	}{
		{r.Pop, "b"},
		{r.Pop, "a"},
		{r.Forward, "b"},
		{r.Forward, "c"},
		{r.Forward, "c"}, // nothing forward, unchanged
	}
	for i, step := range steps {
		e, err := step.op(ctx, "main")
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if e == nil || e.Route != step.want {
			t.Fatalf("step %d = %+v, want %s", i, e, step.want)
		}
	}

	// replay + b, a, b, c
	if got := entries.all(); len(got) != 5 {
		t.Errorf("On(main) emitted %d values, want 5", len(got))
	}
}

func TestPopReevaluatesGuard(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	allowed := reactive.NewBehaviorSubject(true)
	_ = r.Define("main",
		route.Definition{When: "account", Component: ctor("account"), Guard: guard.FromObservable(allowed)},
		route.Definition{When: "home", Component: ctor("home")},
	)
	_, _ = r.Push(ctx, Request{Area: "main", Route: "account"})
	_, _ = r.Push(ctx, Request{Area: "main", Route: "home"})

	allowed.Next(false)
	redirects := record(t, r.Redirects())

	_, err := r.Pop(ctx, "main")
	if !stderrors.Is(err, ErrDenied) {
		t.Fatalf("Pop err = %v, want ErrDenied", err)
	}
	if e, _ := r.Entry("main"); e.Route != "home" {
		t.Errorf("area at %q, want home", e.Route)
	}
	rds := redirects.all()
	if len(rds) != 1 || rds[0].Route != "account" || rds[0].From != "home" {
		t.Errorf("redirects = %+v", rds)
	}
}

func TestPopEmptyHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("no default goes idle", func(t *testing.T) {
		r := newRouter(t)
		_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("only")})
		entries := record(t, r.On("main"))

		e, err := r.Pop(ctx, "main")
		if err != nil || e != nil {
			t.Fatalf("Pop() = %+v, %v; want nil, nil", e, err)
		}
		if r.State("main") != Idle {
			t.Errorf("State = %v, want idle", r.State("main"))
		}
		got := entries.all()
		if len(got) != 2 || got[1] != nil {
			t.Errorf("On(main) = %v, want replay then nil", got)
		}

		// idle stays idle
		if e, err := r.Pop(ctx, "main"); e != nil || err != nil {
			t.Errorf("Pop on idle area = %+v, %v", e, err)
		}
	})

	t.Run("default", func(t *testing.T) {
		r := newRouter(t)
		home := ctor("home")
		_ = r.SetDefault("main", home)
		_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("only")})

		e, err := r.Pop(ctx, "main")
		if err != nil {
			t.Fatal(err)
		}
		if e == nil || !component.Equal(e.Component, home) {
			t.Fatalf("Pop() = %+v, want default", e)
		}

		again, err := r.Pop(ctx, "main")
		if err != nil || again == nil || again.Seq != e.Seq {
			t.Errorf("second Pop() = %+v, %v; want unchanged default", again, err)
		}
	})
}

func TestReplaceSkipsHistory(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("a")})
	_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("b"), Replace: true})

	e, err := r.Pop(ctx, "main")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("Pop() = %+v, want idle: replaced entry must not be in history", e)
	}
}

func TestMiddleware(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
			order = append(order, name+":before")
			err := next(ctx)
			order = append(order, name+":after")
			return err
		})
	}
	blocked := stderrors.New("maintenance")
	block := ForArea("admin", MiddlewareFunc(func(context.Context, *Navigation, func(context.Context) error) error {
		return blocked
	}))

	r := newRouter(t, WithMiddleware(trace("outer"), trace("inner"), block))
	ctx := context.Background()

	if _, err := r.Push(ctx, Request{Area: "main", Component: ctor("home")}); err != nil {
		t.Fatal(err)
	}
	want := []string{"outer:before", "inner:before", "inner:after", "outer:after"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	if _, err := r.Push(ctx, Request{Area: "admin", Component: ctor("panel")}); !stderrors.Is(err, blocked) {
		t.Fatalf("err = %v, want middleware error", err)
	}
	if _, ok := r.Entry("admin"); ok {
		t.Error("aborted navigation committed")
	}
}

func TestMiddlewareSeesCommittedEntry(t *testing.T) {
	var seen *Navigation
	r := newRouter(t, WithMiddleware(MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
		err := next(ctx)
		seen = nav
		return err
	})))
	ctx := context.Background()
	_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("a")})
	_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("b")})

	if seen == nil || seen.Op != OpPush || seen.Entry == nil || seen.From == nil {
		t.Fatalf("navigation = %+v", seen)
	}
	if seen.From.Component.Name != "a" || seen.Entry.Component.Name != "b" {
		t.Errorf("From/Entry = %s/%s", seen.From.Component.Name, seen.Entry.Component.Name)
	}
}

func TestReentrantPushFromSubscriber(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	sub := r.On("main").Subscribe(reactive.Func(func(e *Entry) {
		if e != nil && e.Component.Name == "login" {
			_, _ = r.Push(ctx, Request{Area: "toolbar", Component: ctor("login-toolbar")})
		}
	}))
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("login")})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("re-entrant push deadlocked")
	}
	if e, ok := r.Entry("toolbar"); !ok || e.Component.Name != "login-toolbar" {
		t.Errorf("toolbar = %+v, %v", e, ok)
	}
}

func TestGuardEvaluatedFromItsSource(t *testing.T) {
	r := newRouter(t)
	loggedIn := reactive.NewBehaviorSubject(false)
	if err := r.Define("main", route.Definition{
		When:      "dashboard",
		Component: ctor("dashboard-page"),
		Guard:     guard.FromObservable(loggedIn),
	}); err != nil {
		t.Fatal(err)
	}

	var pushErr error
	sub := loggedIn.Subscribe(reactive.Func(func(v bool) {
		if !v {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, pushErr = r.Push(ctx, Request{Area: "main", Route: "dashboard"})
	}))
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		loggedIn.Next(true)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("guard evaluation from a subscriber of its source hung")
	}
	if pushErr != nil {
		t.Fatalf("Push from login subscriber: %v", pushErr)
	}
	if e, ok := r.Entry("main"); !ok || e.Component.Name != "dashboard-page" {
		t.Errorf("main = %+v, %v", e, ok)
	}
}

func TestGuardOnCurrentFromOnCallback(t *testing.T) {
	r := newRouter(t)
	mainMounted := reactive.Map(r.Current(), func(s Snapshot) bool {
		_, ok := s.Get("main")
		return ok
	})
	if err := r.Define("sidebar", route.Definition{
		When:      "menu",
		Component: ctor("side-menu"),
		Guard:     guard.FromObservable(mainMounted),
	}); err != nil {
		t.Fatal(err)
	}

	var pushErr error
	sub := r.On("main").Subscribe(reactive.Func(func(e *Entry) {
		if e == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, pushErr = r.Push(ctx, Request{Area: "sidebar", Route: "menu"})
	}))
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Push(context.Background(), Request{Area: "main", Component: ctor("home")})
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("guard on Current evaluated from On hung")
	}
	if pushErr != nil {
		t.Fatalf("Push(sidebar): %v", pushErr)
	}
	if e, ok := r.Entry("sidebar"); !ok || e.Component.Name != "side-menu" {
		t.Errorf("sidebar = %+v, %v", e, ok)
	}
}

func TestMiddlewareAbortWithoutError(t *testing.T) {
	var abort atomic.Bool
	r := newRouter(t, WithMiddleware(MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
		if abort.Load() {
			return nil
		}
		return next(ctx)
	})))
	ctx := context.Background()

	// Leave history on both sides of b.
	for _, name := range []string{"a", "b", "c"} {
		if _, err := r.Push(ctx, Request{Area: "main", Component: ctor(name)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.Pop(ctx, "main"); err != nil {
		t.Fatal(err)
	}

	abort.Store(true)
	tests := []struct {
		name string
		run  func() error
	}{
		{"push", func() error {
			_, err := r.Push(ctx, Request{Area: "main", Component: ctor("d")})
			return err
		}},
		{"pop", func() error {
			e, err := r.Pop(ctx, "main")
			if e != nil {
				t.Errorf("Pop entry = %+v, want nil", e)
			}
			return err
		}},
		{"forward", func() error {
			e, err := r.Forward(ctx, "main")
			if e != nil {
				t.Errorf("Forward entry = %+v, want nil", e)
			}
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						t.Fatalf("panicked: %v", rec)
					}
				}()
				err = tt.run()
			}()
			if !stderrors.Is(err, ErrAborted) {
				t.Errorf("err = %v, want ErrAborted", err)
			}
			if e, ok := r.Entry("main"); !ok || e.Component.Name != "b" {
				t.Errorf("main = %+v, %v; want b", e, ok)
			}
		})
	}
}

func TestConcurrentPushesSingleEntry(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	snapshots := record(t, r.Current())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Push(ctx, Request{Area: "x", Component: ctor(fmt.Sprintf("p%d", i))})
		}(i)
	}
	wg.Wait()

	if r.Snapshot().Len() != 1 {
		t.Fatalf("snapshot has %d areas", r.Snapshot().Len())
	}
	final, _ := r.Entry("x")

	var lastSeq uint64
	for _, s := range snapshots.all() {
		e, ok := s.Get("x")
		if !ok {
			continue
		}
		if e.Seq <= lastSeq {
			t.Fatalf("snapshots out of order: %d after %d", e.Seq, lastSeq)
		}
		lastSeq = e.Seq
	}
	if lastSeq != final.Seq {
		t.Errorf("last emitted Seq = %d, committed = %d", lastSeq, final.Seq)
	}
}

func TestCurrentReplaysSnapshot(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	_, _ = r.Push(ctx, Request{Area: "main", Component: ctor("home")})
	_, _ = r.Push(ctx, Request{Area: "overlays", Component: ctor("drawer")})

	snap, err := reactive.First(ctx, r.Current())
	if err != nil {
		t.Fatal(err)
	}
	areas := snap.Areas()
	if len(areas) != 2 || areas[0] != "main" || areas[1] != "overlays" {
		t.Errorf("Areas() = %v", areas)
	}
	entries := snap.Entries()
	delete(entries, "main")
	if _, ok := snap.Get("main"); !ok {
		t.Error("Entries() returned the snapshot's own map")
	}
}

func TestResetAndClose(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	_ = r.Define("main", route.Definition{When: "home", Component: ctor("home")})
	_, _ = r.Push(ctx, Request{Area: "main", Route: "home"})
	entries := record(t, r.On("main"))

	r.Reset()
	if r.Snapshot().Len() != 0 || len(r.Areas()) != 0 {
		t.Error("Reset kept state")
	}
	if got := entries.all(); len(got) != 2 || got[1] != nil {
		t.Errorf("On(main) after reset = %v", got)
	}
	if _, err := r.Push(ctx, Request{Area: "main", Route: "home"}); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Reset kept route tables: err = %v", err)
	}

	completed := make(chan struct{})
	r.Current().Subscribe(reactive.Observer[Snapshot]{Complete: func() { close(completed) }})
	r.Close()
	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("Close did not complete Current")
	}
	if _, err := r.Push(ctx, Request{Area: "main", Component: ctor("x")}); !stderrors.Is(err, ErrClosed) {
		t.Errorf("Push after Close err = %v", err)
	}
}

func TestPreload(t *testing.T) {
	r := newRouter(t)
	var loads atomic.Int32
	l := lazy.Component(func(context.Context) (component.Constructor, error) {
		loads.Add(1)
		return func(map[string]string) component.Element { return &page{tag: "lazy"} }, nil
	})
	_ = r.Define("main", route.Definition{When: "lazy", Component: component.FromLazy(l)})

	r.Preload("main")
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Push(context.Background(), Request{Area: "main", Route: "lazy"}); err != nil {
		t.Fatal(err)
	}
	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1", loads.Load())
	}
}
