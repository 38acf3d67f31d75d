// Package container hosts an area: it feeds declared routes to the router
// and mounts whatever the router resolves for the area.
//
// A container is the Go counterpart of an area element with route markers
// in its slot:
//
//	c := container.New(router, "main", registry)
//	c.SetRoutes(
//	    container.Marker{When: "public-page", Component: component.Tag("public-page")},
//	    container.Marker{When: "protected-page", Component: component.Tag("protected-page"), Guard: loggedIn},
//	)
//	c.OnRedirect(func(rd area.Redirect) { notifier.Error("Please sign in") })
//	c.Connect(ctx)
//
// Cancelling ctx disconnects the container.
package container

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/area/pkg/area"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/guard"
	"github.com/vango-dev/area/pkg/reactive"
	"github.com/vango-dev/area/pkg/route"
)

// Marker declares one route of the container's area.
type Marker struct {
	When      string
	Component component.Descriptor
	Exact     bool
	Guard     guard.Guard
}

// Definition converts the marker to a route definition.
func (m Marker) Definition() route.Definition {
	return route.Definition{
		When:      m.When,
		Component: m.Component,
		Exact:     m.Exact,
		Guard:     m.Guard,
	}
}

// Disposer is implemented by elements that release resources when they
// are unmounted.
type Disposer interface {
	Dispose()
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the container's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefault sets the area's default component.
func WithDefault(d component.Descriptor) Option {
	return func(c *Container) {
		c.fallback = d
	}
}

// Container mounts the entries of one area.
type Container struct {
	router   *area.Router
	name     string
	registry *component.Registry
	logger   *slog.Logger
	fallback component.Descriptor

	mu         sync.Mutex
	connected  bool
	subs       []reactive.Subscription
	stop       func() bool
	mounted    component.Element
	entry      *area.Entry
	nextID     int
	onMount    map[int]func(component.Element, *area.Entry)
	onRedirect map[int]func(area.Redirect)
}

// New creates a container for the named area.
func New(router *area.Router, name string, registry *component.Registry, opts ...Option) *Container {
	c := &Container{
		router:     router,
		name:       name,
		registry:   registry,
		logger:     slog.Default().With("component", "container", "area", name),
		onMount:    make(map[int]func(component.Element, *area.Entry)),
		onRedirect: make(map[int]func(area.Redirect)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.fallback.IsZero() {
		if err := router.SetDefault(name, c.fallback); err != nil {
			c.logger.Error("invalid default component", "error", err)
		}
	}
	return c
}

// Name returns the area name.
func (c *Container) Name() string {
	return c.name
}

// SetRoutes replaces the area's route table with the given markers.
func (c *Container) SetRoutes(markers ...Marker) error {
	defs := make([]route.Definition, len(markers))
	for i, m := range markers {
		defs[i] = m.Definition()
	}
	return c.router.Replace(c.name, defs...)
}

// Connect starts mounting the area's entries. The current entry, if any,
// is mounted right away. Connecting twice is a no-op.
func (c *Container) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = true
	c.mu.Unlock()

	redirects := reactive.Filter(c.router.Redirects(), func(rd area.Redirect) bool {
		return rd.Area == c.name
	})
	redirectSub := redirects.Subscribe(reactive.Func(c.dispatchRedirect))
	entrySub := c.router.On(c.name).Subscribe(reactive.Func(func(e *area.Entry) {
		c.mount(ctx, e)
	}))

	c.mu.Lock()
	c.subs = append(c.subs, redirectSub, entrySub)
	c.stop = context.AfterFunc(ctx, c.Disconnect)
	c.mu.Unlock()
	return nil
}

// Disconnect stops mounting. The mounted element stays in place.
func (c *Container) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	stop := c.stop
	c.subs = nil
	c.stop = nil
	c.connected = false
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Connected reports whether the container is mounting entries.
func (c *Container) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Navigate pushes a route key of the container's area.
func (c *Container) Navigate(ctx context.Context, key string, params map[string]string) (area.Entry, error) {
	return c.router.Push(ctx, area.Request{Area: c.name, Route: key, Params: params})
}

// Back pops the container's area.
func (c *Container) Back(ctx context.Context) (*area.Entry, error) {
	return c.router.Pop(ctx, c.name)
}

// Mounted returns the mounted element, nil if none.
func (c *Container) Mounted() component.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Entry returns the entry of the mounted element, nil if none.
func (c *Container) Entry() *area.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// OnMount registers fn for every mount and unmount (el and e are nil on
// unmount). It returns a function removing fn.
func (c *Container) OnMount(fn func(el component.Element, e *area.Entry)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.onMount[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.onMount, id)
		c.mu.Unlock()
	}
}

// OnRedirect registers fn for navigations of the area denied by a guard.
// It returns a function removing fn.
func (c *Container) OnRedirect(fn func(area.Redirect)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.onRedirect[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.onRedirect, id)
		c.mu.Unlock()
	}
}

func (c *Container) dispatchRedirect(rd area.Redirect) {
	c.mu.Lock()
	listeners := make([]func(area.Redirect), 0, len(c.onRedirect))
	for _, fn := range c.onRedirect {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if len(listeners) == 0 {
		c.logger.Warn("navigation denied with no redirect listener", "route", rd.Route)
	}
	for _, fn := range listeners {
		fn(rd)
	}
}

// mount swaps the mounted element for the one described by e.
// A nil entry unmounts. Mount failures keep the previous element.
func (c *Container) mount(ctx context.Context, e *area.Entry) {
	var el component.Element
	if e != nil {
		var err error
		el, err = component.Mount(ctx, e.Component, c.registry, e.Params)
		if err != nil {
			c.logger.Error("mount failed", "route", e.Route, "component", e.Component.String(), "error", err)
			return
		}
	}

	c.mu.Lock()
	prev := c.mounted
	c.mounted = el
	c.entry = e
	listeners := make([]func(component.Element, *area.Entry), 0, len(c.onMount))
	for _, fn := range c.onMount {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if prev != nil && prev != el {
		if d, ok := prev.(Disposer); ok {
			d.Dispose()
		}
	}
	for _, fn := range listeners {
		fn(el, e)
	}
}
