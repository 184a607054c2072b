package niidg

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps (profile, entity type name) pairs to their schemas. It is
// populated once and read-only thereafter, so lookups are safe for
// concurrent readers.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry builds a registry from profile definitions. Duplicate profile
// names are an error.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if _, dup := r.defs[d.Profile]; dup {
			return nil, fmt.Errorf("profile %q registered twice", d.Profile)
		}
		r.defs[d.Profile] = d
	}
	return r, nil
}

// Lookup resolves an entity schema by profile and type name. A miss returns
// an unknown_entity_type Violation as the error.
func (r *Registry) Lookup(profile, name string) (*EntitySchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.defs[profile]; ok {
		if es := d.Entity(name); es != nil {
			return es, nil
		}
	}
	return nil, NewViolation("", "", CodeUnknownEntityType, map[string]any{
		"profile": profile,
		"type":    name,
	})
}

// Definition returns the definition registered for a profile.
func (r *Registry) Definition(profile string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[profile]
	return d, ok
}

// Profiles returns the registered profile names, sorted.
func (r *Registry) Profiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry instance and initialization guard.
var (
	globalRegistry *Registry
	globalMu       sync.Mutex
	globalSet      bool
)

// Global returns the singleton registry. Before Init it is empty, so every
// lookup fails with unknown_entity_type.
func Global() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRegistry == nil {
		globalRegistry = &Registry{defs: map[string]*Definition{}}
	}
	return globalRegistry
}

// Init installs the given profile definitions as the process-wide registry.
// It must be called before entities are constructed and succeeds exactly
// once; a second call is an error so initialization order stays explicit.
func Init(defs ...*Definition) error {
	r, err := NewRegistry(defs...)
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalSet {
		return fmt.Errorf("schema registry already initialized")
	}
	globalRegistry = r
	globalSet = true
	return nil
}

// ResetGlobal clears the global registry for testing purposes.
// This is NOT thread-safe and should only be used in tests.
func ResetGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalRegistry = nil
	globalSet = false
}
