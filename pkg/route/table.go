package route

import (
	"sync"

	"github.com/vango-dev/area/internal/errors"
)

// Table is the ordered route table of one area.
// It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	defs   []Definition
	byWhen map[string]int
	root   *node
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byWhen: make(map[string]int),
		root:   newNode(""),
	}
}

// Register adds a definition. A definition with the same When as an
// existing one replaces it in place.
func (t *Table) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.byWhen[def.When]; ok {
		t.defs[i] = def
		return nil
	}
	t.byWhen[def.When] = len(t.defs)
	t.defs = append(t.defs, def)
	t.rebuildLocked()
	return nil
}

// Replace swaps the whole table for defs. Later definitions win over
// earlier ones with the same When. On error the table is unchanged.
func (t *Table) Replace(defs ...Definition) error {
	next := make([]Definition, 0, len(defs))
	byWhen := make(map[string]int, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		if i, ok := byWhen[def.When]; ok {
			next[i] = def
			continue
		}
		byWhen[def.When] = len(next)
		next = append(next, def)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.defs = next
	t.byWhen = byWhen
	t.rebuildLocked()
	return nil
}

// Remove deletes the definition for when and reports whether it existed.
func (t *Table) Remove(when string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byWhen[when]
	if !ok {
		return false
	}
	t.defs = append(t.defs[:i:i], t.defs[i+1:]...)
	t.byWhen = make(map[string]int, len(t.defs))
	for j, def := range t.defs {
		t.byWhen[def.When] = j
	}
	t.rebuildLocked()
	return true
}

// Resolve returns the definition whose When equals key.
func (t *Table) Resolve(key string) (Definition, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i, ok := t.byWhen[key]; ok {
		return t.defs[i], nil
	}
	return Definition{}, errors.New("A001").WithDetailf("no route for %q", key)
}

// Match resolves key against the table, falling back to hierarchical
// matching when no When equals key.
func (t *Table) Match(key string) (Match, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i, ok := t.byWhen[key]; ok {
		return Match{Definition: t.defs[i]}, true
	}

	params := make(map[string]string)
	exact := func(i int) bool { return t.defs[i].Exact }
	n, rest, ok := t.root.match(splitKey(key), params, exact)
	if !ok {
		return Match{}, false
	}
	m := Match{Definition: t.defs[n.def], Rest: rest}
	if len(params) > 0 {
		m.Params = params
	}
	return m, true
}

// Has reports whether a definition with the given When exists.
func (t *Table) Has(when string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byWhen[when]
	return ok
}

// Definitions returns the definitions in declaration order.
func (t *Table) Definitions() []Definition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Definition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.defs)
}

// rebuildLocked rebuilds the segment tree from defs.
// When two definitions normalize to the same tree node, the later one wins.
func (t *Table) rebuildLocked() {
	t.root = newNode("")
	for i, def := range t.defs {
		t.root.insert(def.When).def = i
	}
}
