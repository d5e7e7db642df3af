package component

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// PlatformFactory builds the platform specialization of a component.
type PlatformFactory func() Component

// platforms maps an exact component type to its platform factories.
// Registration is keyed on the concrete type: a type embedding another
// component type does not inherit the embedded type's platforms.
var platforms = struct {
	sync.RWMutex
	byType map[reflect.Type]map[string]PlatformFactory
}{byType: make(map[reflect.Type]map[string]PlatformFactory)}

// RegisterPlatform registers factory as the specialization of component type
// T on platform. A later registration for the same pair replaces the earlier.
//
//	component.RegisterPlatform[*Package]("debian", func() component.Component { return &AptPackage{} })
func RegisterPlatform[T Component](platform string, factory PlatformFactory) {
	t := reflect.TypeFor[T]()
	platforms.Lock()
	defer platforms.Unlock()
	m, ok := platforms.byType[t]
	if !ok {
		m = make(map[string]PlatformFactory)
		platforms.byType[t] = m
	}
	m[platform] = factory
}

// PlatformsOf returns the platform identifiers registered for c's exact type.
func PlatformsOf(c Component) []string {
	platforms.RLock()
	defer platforms.RUnlock()
	m := platforms.byType[reflect.TypeOf(c)]
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Platforms returns the platform identifiers registered for components of
// type t. It builds a throwaway instance; constructors that reject empty
// attributes report no platforms.
func (t Type) Platforms() []string {
	if t.New == nil {
		return nil
	}
	c, err := t.New(Attributes{})
	if err != nil || isNil(c) {
		return nil
	}
	return PlatformsOf(c)
}

// platformFor returns a new specialization of c for platform, or nil. A
// specialization of c's own type would specialize itself forever and is
// rejected.
func platformFor(c Component, platform string) (Component, error) {
	if platform == "" {
		return nil, nil
	}
	t := reflect.TypeOf(c)
	platforms.RLock()
	factory, ok := platforms.byType[t][platform]
	platforms.RUnlock()
	if !ok {
		return nil, nil
	}
	spec := factory()
	if !isNil(spec) && reflect.TypeOf(spec) == t {
		return nil, fmt.Errorf("%w: %s specialization for platform %q has the same type %s",
			cerrors.ErrConfiguration, breadcrumb(c), platform, t)
	}
	return spec, nil
}
