// Package environment reads environment files: which hosts exist, which root
// components each host runs, and per-component attribute overrides.
//
//	name: production
//	platform: debian
//	service:
//	  name: shop
//	  base: /srv/shop
//	hosts:
//	  web01.example.com:
//	    components: [frontend, app]
//	overrides:
//	  frontend:
//	    port: 8080
//
// Top-level keys are case-insensitive, as are the component names under
// overrides. Host names and attribute keys keep their case. A relative
// service base resolves against the directory holding the environment file.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/converge/internal/component"
	cerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// HostSpec lists the root components deployed to one host.
type HostSpec struct {
	Components []string `mapstructure:"components"`
}

// File is the parsed content of an environment file.
type File struct {
	Name      string                          `mapstructure:"name"`
	Platform  string                          `mapstructure:"platform"`
	Service   component.Service               `mapstructure:"service"`
	Hosts     map[string]HostSpec             `mapstructure:"-"`
	Overrides map[string]component.Attributes `mapstructure:"-"`

	// Path is the absolute path of the file.
	Path string `mapstructure:"-"`
}

// Load reads and validates the environment file at path.
func Load(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving environment path: %w", err)
	}

	// Host names contain dots, so keys must not be split on them.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(abs)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cerrors.NewNotFoundError(
				"environment file not found", path, "pass an existing environment file with --environment")
		}
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("reading environment: %v", err), path, "", "")
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("decoding environment: %v", err), path, "", "")
	}
	f.Path = abs

	// viper folds keys at every depth; host names and override payloads are
	// decoded from the file itself so they keep their case.
	if err := f.decodeCaseSensitive(); err != nil {
		return nil, err
	}

	if err := f.normalize(); err != nil {
		return nil, err
	}

	output.Debug("loaded environment",
		"name", f.Name,
		"platform", f.Platform,
		"hosts", len(f.Hosts),
		"base", f.Service.Base,
	)
	return &f, nil
}

func (f *File) decodeCaseSensitive() error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cerrors.NewValidationError(
			fmt.Sprintf("reading environment: %v", err), f.Path, "", "")
	}

	for key, value := range raw {
		switch strings.ToLower(key) {
		case "hosts":
			if err := mapstructure.Decode(value, &f.Hosts); err != nil {
				return cerrors.NewValidationError(
					fmt.Sprintf("decoding hosts: %v", err), f.Path, "hosts", "")
			}
		case "overrides":
			var overrides map[string]component.Attributes
			if err := mapstructure.Decode(value, &overrides); err != nil {
				return cerrors.NewValidationError(
					fmt.Sprintf("decoding overrides: %v", err), f.Path, "overrides", "")
			}
			if f.Overrides == nil && len(overrides) > 0 {
				f.Overrides = make(map[string]component.Attributes, len(overrides))
			}
			for name, attrs := range overrides {
				f.Overrides[strings.ToLower(name)] = attrs
			}
		}
	}
	return nil
}

func (f *File) normalize() error {
	dir := filepath.Dir(f.Path)
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	}
	if f.Service.Name == "" {
		f.Service.Name = f.Name
	}
	switch {
	case f.Service.Base == "":
		f.Service.Base = dir
	case !filepath.IsAbs(f.Service.Base):
		f.Service.Base = filepath.Join(dir, f.Service.Base)
	}
	if len(f.Hosts) == 0 {
		return cerrors.NewValidationError(
			"environment declares no hosts", f.Path, "hosts",
			"add at least one host with a components list")
	}
	for name, h := range f.Hosts {
		for i, c := range h.Components {
			h.Components[i] = strings.ToLower(strings.TrimSpace(c))
		}
		f.Hosts[name] = h
	}
	return nil
}

// HostNames returns the declared hosts sorted by name.
func (f *File) HostNames() []string {
	names := make([]string, 0, len(f.Hosts))
	for name := range f.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Components returns the root component names assigned to host.
func (f *File) Components(host string) []string {
	return f.Hosts[host].Components
}

// OverridesFor returns the attribute overrides for the named root component.
func (f *File) OverridesFor(name string) component.Attributes {
	return f.Overrides[strings.ToLower(name)]
}

// Build creates the runtime environment with every declared host.
func (f *File) Build() *component.Environment {
	service := f.Service
	env := component.NewEnvironment(f.Name, f.Platform, &service)
	for _, name := range f.HostNames() {
		env.AddHost(name)
	}
	return env
}

// Check verifies that every component referenced by a host or an override
// exists among factories.
func (f *File) Check(factories []*component.RootFactory) error {
	known := make(map[string]bool, len(factories))
	names := make([]string, 0, len(factories))
	for _, fac := range factories {
		known[fac.Name] = true
		names = append(names, fac.Name)
	}

	for _, host := range f.HostNames() {
		for _, c := range f.Components(host) {
			if !known[c] {
				return &cerrors.DetailError{
					Type:     "not found",
					Message:  fmt.Sprintf("host %s references unknown component %q", host, c),
					Location: f.Path,
					Field:    "hosts." + host + ".components",
					Context:  map[string]string{"available": strings.Join(names, ", ")},
					Cause:    cerrors.ErrNotFound,
				}
			}
		}
	}
	for c := range f.Overrides {
		if !known[c] {
			return &cerrors.DetailError{
				Type:     "not found",
				Message:  fmt.Sprintf("override for unknown component %q", c),
				Location: f.Path,
				Field:    "overrides." + c,
				Context:  map[string]string{"available": strings.Join(names, ", ")},
				Cause:    cerrors.ErrNotFound,
			}
		}
	}
	return nil
}
