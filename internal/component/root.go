package component

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cerrors "github.com/opmodel/converge/internal/errors"
)

type workdirKey struct{}

// WithWorkdir returns a context carrying dir as the working directory for
// relative paths and commands.
func WithWorkdir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workdirKey{}, dir)
}

// WorkdirFromContext returns the working directory set by WithWorkdir.
func WorkdirFromContext(ctx context.Context) (string, bool) {
	dir, ok := ctx.Value(workdirKey{}).(string)
	return dir, ok
}

// Root wraps a top-level component deployed to one host. It owns the work
// directory the component tree operates in.
type Root struct {
	name      string
	defdir    string
	component Component
	host      *Host
	service   *Service
}

// NewRoot wraps c. defdir is the directory of the definition c came from.
func NewRoot(name string, c Component, defdir string) *Root {
	return &Root{name: name, component: c, defdir: defdir}
}

// Name returns the root name.
func (r *Root) Name() string { return r.name }

// Component returns the wrapped top-level component.
func (r *Root) Component() Component { return r.component }

// Defdir returns the directory of the definition the root came from.
func (r *Root) Defdir() string { return r.defdir }

// Host returns the host the root is attached to.
func (r *Root) Host() *Host { return r.host }

// Workdir returns <service base>/work/<root name>.
func (r *Root) Workdir() string {
	base := ""
	if r.service != nil {
		base = r.service.Base
	}
	return filepath.Join(base, "work", r.name)
}

// Deploy creates the work directory if needed and deploys the component tree
// with the work directory carried in ctx. The process working directory is
// never changed, so roots on different hosts can deploy concurrently.
func (r *Root) Deploy(ctx context.Context) (*Report, error) {
	if r.service == nil || r.service.Base == "" {
		return nil, fmt.Errorf("%w: root %s has no service base directory", cerrors.ErrConfiguration, r.name)
	}
	dir := r.Workdir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory for %s: %w", r.name, err)
	}
	return Deploy(WithWorkdir(ctx, dir), r.component)
}

// ChildSpec declares a sub-component listed in a definition file.
type ChildSpec struct {
	Type       Type
	Attributes Attributes
	Children   []ChildSpec
}

// RootFactory creates a Root for a (service, environment, host, config) tuple.
type RootFactory struct {
	// Name is the root name; it names the work directory.
	Name string

	// Type is the top-level component type.
	Type Type

	// Defdir is the directory of the definition source.
	Defdir string

	// Defaults are the attributes declared in the definition. Host-level
	// config passed to Instantiate overrides them key by key.
	Defaults Attributes

	// Children are sub-components declared in the definition, added after
	// the top-level component's own Configure.
	Children []ChildSpec
}

// NewRootFactory returns a factory named name, or the lower-cased type name
// when name is empty.
func NewRootFactory(name string, t Type, defdir string) *RootFactory {
	if name == "" {
		name = t.Name
	}
	return &RootFactory{Name: strings.ToLower(name), Type: t, Defdir: defdir}
}

// Instantiate constructs the component, attaches its root to host and
// prepares the tree. On failure the root is detached again.
func (f *RootFactory) Instantiate(service *Service, env *Environment, host *Host, config Attributes) (*Root, error) {
	c, err := f.Type.Construct(f.Defaults.Merge(config))
	if err != nil {
		return nil, fmt.Errorf("root %s: %w", f.Name, err)
	}
	if err := declareChildren(c, f.Children); err != nil {
		return nil, fmt.Errorf("root %s: %w", f.Name, err)
	}

	root := &Root{name: f.Name, defdir: f.Defdir, component: c, host: host, service: service}
	if host != nil {
		host.Attach(root)
	}
	if err := Prepare(c, Context{Service: service, Environment: env, Host: host, Root: root}, nil); err != nil {
		if host != nil {
			host.Detach(root)
		}
		return nil, fmt.Errorf("root %s: %w", f.Name, err)
	}
	return root, nil
}

func declareChildren(parent Component, specs []ChildSpec) error {
	for _, spec := range specs {
		child, err := spec.Type.Construct(spec.Attributes)
		if err != nil {
			return err
		}
		if err := declareChildren(child, spec.Children); err != nil {
			return err
		}
		parent.base().Declare(child)
	}
	return nil
}
