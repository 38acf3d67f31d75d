package route

import (
	"github.com/vango-dev/area/internal/errors"
	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/guard"
)

// ErrNotFound is returned when no definition matches a key.
var ErrNotFound = errors.New("A001")

// ErrInvalidDefinition is returned for definitions without a When key.
var ErrInvalidDefinition = errors.New("A002")

// Definition maps a route key to the component mounted for it.
type Definition struct {
	// When is the route key.
	When string

	// Component is what gets mounted when the route is active.
	Component component.Descriptor

	// Exact disables matching of keys below When.
	Exact bool

	// Guard gates navigation to the route. Nil allows.
	Guard guard.Guard
}

// Validate checks that the definition can be registered.
func (d Definition) Validate() error {
	if d.When == "" {
		return errors.New("A002").WithDetail("empty when")
	}
	if d.Component.IsZero() {
		return errors.New("A002").WithDetailf("route %q has no component", d.When)
	}
	return d.Component.Validate()
}

// Match is the result of matching a key against a table.
type Match struct {
	Definition Definition

	// Params holds captured ":name" and "*name" segments.
	Params map[string]string

	// Rest is the part of the key below a non-exact definition.
	Rest string
}
