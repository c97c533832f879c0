// Package registry holds the catalog of custom components that can be embedded
// in a design document as parametrized HTML blocks.
package registry

import "sync"

// Registry maps component ids to their definitions.
//
// A Registry is constructed once at start-up, filled by an explicit
// registration step (see components.RegisterBuiltins) and then shared by the
// detector, updater and server surfaces. Reads are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Definition
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[string]*Definition)}
}

// Register inserts def, or overwrites the entry with the same id. An
// overwritten entry keeps its original position in All. No validation is
// performed; see Validate.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	d := def
	r.byID[def.ID] = &d
}

// Get looks up a component by id.
func (r *Registry) Get(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.byID[id]
	return def, ok
}

// All returns every definition in registration order.
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
