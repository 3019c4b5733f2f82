// Package registry maps widget type tags to capabilities.
//
// It is the only extension point for new widget kinds: the settings aggregate stores
// arbitrary type strings and presentation code resolves them here at render time.
package registry

import (
	"strings"
	"sync"
)

type Registry[C any] struct {
	mu    sync.RWMutex
	caps  map[string]C
	order []string
}

func New[C any]() *Registry[C] {
	return &Registry[C]{caps: map[string]C{}}
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(kind)
}

// Register adds or replaces the capability for kind. Empty kinds are ignored.
func (r *Registry[C]) Register(kind string, c C) {
	kind = normalizeKind(kind)
	if kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.caps[kind]; !ok {
		r.order = append(r.order, kind)
	}
	r.caps[kind] = c
}

// Resolve returns the capability for kind. Unknown kinds return ok=false.
func (r *Registry[C]) Resolve(kind string) (C, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[normalizeKind(kind)]
	return c, ok
}

func (r *Registry[C]) Has(kind string) bool {
	_, ok := r.Resolve(kind)
	return ok
}

// Kinds returns registered kinds in registration order.
func (r *Registry[C]) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
