package manifest

import (
	"sort"
	"sync"

	"github.com/vango-dev/area/pkg/guard"
	"github.com/vango-dev/area/pkg/reactive"
)

// Flags is a set of named boolean states that guards can observe, such as
// "logged-in" or "beta".
type Flags struct {
	mu    sync.Mutex
	flags map[string]*reactive.BehaviorSubject[bool]
}

// NewFlags creates an empty flag set.
func NewFlags() *Flags {
	return &Flags{flags: make(map[string]*reactive.BehaviorSubject[bool])}
}

// Declare adds a flag with an initial value. Declaring an existing flag
// keeps its value.
func (f *Flags) Declare(name string, initial bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.flags[name]; !ok {
		f.flags[name] = reactive.NewBehaviorSubject(initial)
	}
}

// Set updates a flag, declaring it if needed.
func (f *Flags) Set(name string, v bool) {
	f.mu.Lock()
	s, ok := f.flags[name]
	if !ok {
		s = reactive.NewBehaviorSubject(v)
		f.flags[name] = s
	}
	f.mu.Unlock()

	if ok {
		s.Next(v)
	}
}

// Get returns the value of a flag.
func (f *Flags) Get(name string) (bool, bool) {
	f.mu.Lock()
	s, ok := f.flags[name]
	f.mu.Unlock()
	if !ok {
		return false, false
	}
	return s.Value(), true
}

// Observable returns the stream of a flag's values.
func (f *Flags) Observable(name string) (reactive.Observable[bool], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.flags[name]
	if !ok {
		return nil, false
	}
	return s, true
}

// Guard returns a guard allowing navigation while the flag is true.
func (f *Flags) Guard(name string) (guard.Guard, bool) {
	obs, ok := f.Observable(name)
	if !ok {
		return nil, false
	}
	return guard.FromObservable(obs), true
}

// Names returns the declared flag names, sorted.
func (f *Flags) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.flags))
	for name := range f.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
