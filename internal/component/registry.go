package component

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrTypeExists      = errors.New("component type already registered")
	ErrInvalidTypeName = errors.New("invalid component type name")
)

// Registry maps type names to component types. Definition files refer to
// component types by these names.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds t. Names are lower-case identifiers made of letters, digits,
// '-', '_' and '.'.
func (r *Registry) Register(t Type) error {
	if !isValidTypeName(t.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidTypeName, t.Name)
	}
	if t.New == nil {
		return fmt.Errorf("%w: %q has no constructor", ErrInvalidTypeName, t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTypeExists, t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// MustRegister is Register that panics on error. Meant for init-time wiring.
func (r *Registry) MustRegister(types ...Type) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the type registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isValidTypeName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if isSep && (i == 0 || i == len(name)-1) {
			return false
		}
	}
	return true
}
