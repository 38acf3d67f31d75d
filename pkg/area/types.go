package area

import (
	"sort"

	"github.com/vango-dev/area/pkg/component"
)

// Request asks for a navigation of one area.
type Request struct {
	// Area is the name of the area to navigate. Required.
	Area string

	// Component is mounted directly, unless it is a tag whose name matches
	// a When key of the area's table.
	Component component.Descriptor

	// Route is a key resolved through the area's table. It takes
	// precedence over Component.
	Route string

	// Params are passed to the mounted component.
	Params map[string]string

	// Replace commits without recording history.
	Replace bool
}

// Entry is the resolved state of one area.
type Entry struct {
	Area string

	// Route is the key navigated to. Empty for direct mounts.
	Route string

	// Pattern is the When of the matched definition, if any.
	Pattern string

	// Rest is the part of Route below a non-exact definition.
	Rest string

	Component component.Descriptor
	Params    map[string]string

	// Seq increases with every commit across all areas.
	Seq uint64
}

// Snapshot is an immutable view of every area's entry.
type Snapshot struct {
	entries map[string]Entry
}

// Get returns the entry of an area.
func (s Snapshot) Get(area string) (Entry, bool) {
	e, ok := s.entries[area]
	return e, ok
}

// Len returns the number of mounted areas.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Areas returns the names of mounted areas, sorted.
func (s Snapshot) Areas() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of the snapshot as a map.
func (s Snapshot) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// State is the lifecycle state of an area.
type State int

const (
	// Idle areas have no entry.
	Idle State = iota
	// Resolving areas have a navigation in flight.
	Resolving
	// Mounted areas have an entry and nothing in flight.
	Mounted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Mounted:
		return "mounted"
	default:
		return "idle"
	}
}

// Op identifies the kind of navigation.
type Op string

const (
	OpPush    Op = "push"
	OpPop     Op = "pop"
	OpForward Op = "forward"
)

// Redirect reports a navigation denied by a guard.
type Redirect struct {
	Area string

	// Route is the key that was denied.
	Route string

	// From is the route the area stays on. Empty if the area is idle.
	From string

	// Reason is set when the guard failed rather than answered false.
	Reason error
}

// Navigation describes a navigation as it passes through middleware.
type Navigation struct {
	Op        Op
	Area      string
	Route     string
	Component component.Descriptor
	Params    map[string]string
	Replace   bool

	// From is the area's entry before the navigation, nil if idle.
	From *Entry

	// Entry is set once the navigation has committed.
	Entry *Entry
}
