package component

import (
	"sort"
	"sync"

	"github.com/vango-dev/area/internal/errors"
)

// Registry maps tag names to constructors, like a custom-element registry.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Define registers a constructor for tag. Tags can be defined only once.
func (r *Registry) Define(tag string, ctor Constructor) error {
	if tag == "" || ctor == nil {
		return errors.New("A011").WithDetail("tag and constructor are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[tag]; exists {
		return errors.New("A012").WithDetailf("tag %q", tag)
	}
	r.ctors[tag] = ctor
	return nil
}

// MustDefine is like Define but panics on error.
func (r *Registry) MustDefine(tag string, ctor Constructor) {
	if err := r.Define(tag, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor for tag.
func (r *Registry) Lookup(tag string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ctors[tag]
	return ctor, ok
}

// Tags returns the defined tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.ctors))
	for tag := range r.ctors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
