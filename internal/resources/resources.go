// Package resources provides the built-in component types.
package resources

import (
	"io/fs"

	"github.com/opmodel/converge/internal/component"
)

const (
	defaultFileMode fs.FileMode = 0o644
	defaultDirMode  fs.FileMode = 0o755
)

// Types returns the built-in component types.
func Types() []component.Type {
	return []component.Type{
		FileType,
		DirectoryType,
		CommandType,
		PackageType,
		SecretsType,
		GroupType,
	}
}

// Register adds the built-in component types to reg.
func Register(reg *component.Registry) error {
	for _, t := range Types() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in types.
func NewRegistry() *component.Registry {
	reg := component.NewRegistry()
	reg.MustRegister(Types()...)
	return reg
}

func modeOrDefault(mode, def fs.FileMode) fs.FileMode {
	if mode == 0 {
		return def
	}
	return mode.Perm()
}

// decoded returns a constructor decoding attributes into a fresh *T.
func decoded[T any, PT interface {
	*T
	component.Component
}]() func(component.Attributes) (component.Component, error) {
	return func(attrs component.Attributes) (component.Component, error) {
		c := PT(new(T))
		if err := attrs.Decode(c); err != nil {
			return nil, err
		}
		return c, nil
	}
}
