package filter

import (
	"errors"
	"fmt"
	"sort"
)

// Registered filter names.
const (
	NameIdentity      = "identity"
	NameRedundancy    = "redundancy"
	NameUndersampling = "undersampling"
)

// ErrUnknownFilter is returned by Resolve for names nothing was registered under.
var ErrUnknownFilter = errors.New("unknown filter")

// Factory builds a Filter instance.
type Factory func() Filter

// Registry maps configuration names to filter factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty filter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding the built-in filters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameIdentity, func() Filter { return Identity{} })
	r.Register(NameRedundancy, func() Filter { return Redundancy{} })
	r.Register(NameUndersampling, func() Filter { return Undersampling{} })
	return r
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Has reports whether a filter with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Resolve builds the filter registered under name. An empty name selects
// the identity filter.
func (r *Registry) Resolve(name string) (Filter, error) {
	if name == "" {
		return Identity{}, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownFilter, name, r.Names())
	}
	return f(), nil
}

// Names returns a sorted list of all registered filter names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
