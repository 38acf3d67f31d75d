package manifest

import (
	"io"
	"strings"

	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/area"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/guard"
	"github.com/vango-dev/area/pkg/route"
)

// Bindings resolve the names a manifest refers to.
type Bindings struct {
	// Flags backs guard expressions. Flags declared by the manifest are
	// added to it. Required when any route has a guard.
	Flags *Flags

	// Lazy maps lazy binding names to components.
	Lazy map[string]component.LazyConstructor

	// Remote builds lazy components for s3 routes.
	Remote func(key string) component.LazyConstructor
}

// Apply replaces the route tables and defaults of the manifest's areas.
// Every area's routes are resolved and validated before any table is
// changed.
func (m *Manifest) Apply(r *area.Router, b Bindings) error {
	if b.Flags != nil {
		for name, v := range m.Flags {
			b.Flags.Declare(name, v)
		}
	}

	tables := make([][]route.Definition, len(m.Areas))
	for i, a := range m.Areas {
		defs := make([]route.Definition, 0, len(a.Routes))
		for _, rs := range a.Routes {
			def, err := definition(a.Name, rs, b)
			if err != nil {
				return err
			}
			if err := def.Validate(); err != nil {
				return errors.New("A062").WithDetailf("area %q route %q", a.Name, rs.When).Wrap(err)
			}
			defs = append(defs, def)
		}
		tables[i] = defs
	}

	for i, a := range m.Areas {
		if err := r.Replace(a.Name, tables[i]...); err != nil {
			return err
		}
		var fallback component.Descriptor
		if a.Default != "" {
			fallback = component.Tag(a.Default)
		}
		if err := r.SetDefault(a.Name, fallback); err != nil {
			return err
		}
	}
	return nil
}

func definition(areaName string, rs RouteSpec, b Bindings) (route.Definition, error) {
	def := route.Definition{When: rs.When, Exact: rs.Exact}

	switch rs.Source() {
	case "tag":
		def.Component = component.Tag(rs.Tag)
	case "template":
		html := rs.Template
		def.Component = component.Inline(component.TemplateFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		})).Named(rs.When)
	case "lazy":
		l, ok := b.Lazy[rs.Lazy]
		if !ok || l == nil {
			return def, errors.New("A062").WithDetailf("area %q route %q: no lazy binding %q", areaName, rs.When, rs.Lazy)
		}
		def.Component = component.FromLazy(l).Named(rs.Lazy)
	case "s3":
		if b.Remote == nil {
			return def, errors.New("A062").WithDetailf("area %q route %q: s3 routes need a remote loader", areaName, rs.When)
		}
		def.Component = component.FromLazy(b.Remote(rs.S3)).Named(rs.When)
	default:
		return def, errors.New("A062").WithDetailf("area %q route %q has no component", areaName, rs.When)
	}

	g, err := guardFor(rs.Guard, b.Flags)
	if err != nil {
		return def, errors.New("A062").WithDetailf("area %q route %q", areaName, rs.When).Wrap(err)
	}
	def.Guard = g
	return def, nil
}

// guardFor builds the guard of an expression such as "logged-in,!banned".
func guardFor(expr string, flags *Flags) (guard.Guard, error) {
	names := guardNames(expr)
	if len(names) == 0 {
		return nil, nil
	}
	if flags == nil {
		return nil, errors.New("A062").WithDetailf("guard %q needs flags", expr)
	}

	guards := make([]guard.Guard, 0, len(names))
	for _, name := range names {
		negate := strings.HasPrefix(name, "!")
		name = strings.TrimPrefix(name, "!")
		g, ok := flags.Guard(name)
		if !ok {
			return nil, errors.New("A062").WithDetailf("unknown flag %q", name)
		}
		if negate {
			g = guard.Not(g)
		}
		guards = append(guards, g)
	}
	if len(guards) == 1 {
		return guards[0], nil
	}
	return guard.All(guards...), nil
}
