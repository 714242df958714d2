package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Refetcher is the type-erased view of a Slice or Value.
type Refetcher interface {
	Name() string
	Status() Status
	InvalidateAndRefetch(ctx context.Context) error
}

// Registry indexes slices by resource name so pages can resynchronize a
// resource without knowing its record type.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Refetcher
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Refetcher)}
}

// Register adds r under r.Name(), replacing any previous entry.
func (r *Registry) Register(items ...Refetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.items[it.Name()] = it
	}
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Refetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[name]
	return it, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for n := range r.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InvalidateAndRefetch is the one way pages resynchronize after a mutation.
func (r *Registry) InvalidateAndRefetch(ctx context.Context, name string) error {
	it, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("state: unknown resource %q", name)
	}
	return it.InvalidateAndRefetch(ctx)
}
