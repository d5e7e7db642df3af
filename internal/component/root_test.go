package component

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// probe records the work directory visible during Verify.
type probe struct {
	Base
	Label  string `attr:"label"`
	seen   []string
	hasDir bool
}

func (p *probe) Verify(ctx context.Context) (Status, error) {
	dir, ok := WorkdirFromContext(ctx)
	p.hasDir = ok
	p.seen = append(p.seen, dir)
	return Current, nil
}

var probeType = Type{
	Name:    "probe",
	Namevar: "label",
	New: func(attrs Attributes) (Component, error) {
		p := &probe{}
		return p, attrs.Decode(p)
	},
}

func newTestEnv(t *testing.T) (*Environment, *Service) {
	t.Helper()
	service := &Service{Name: "svc", Base: t.TempDir()}
	return NewEnvironment("test", "", service), service
}

func TestRoot_DeployCreatesWorkdir(t *testing.T) {
	env, service := newTestEnv(t)
	host := env.AddHost("localhost")
	factory := NewRootFactory("", probeType, "/defs")
	factory.Defaults = Attributes{"label": "one"}

	root, err := factory.Instantiate(service, env, host, nil)
	require.NoError(t, err)

	want := filepath.Join(service.Base, "work", "probe")
	assert.Equal(t, want, root.Workdir())
	assert.NoDirExists(t, want)

	_, err = root.Deploy(context.Background())
	require.NoError(t, err)
	assert.DirExists(t, want)

	_, err = root.Deploy(context.Background())
	require.NoError(t, err, "deploy is idempotent on an existing work directory")

	p := root.Component().(*probe)
	assert.True(t, p.hasDir)
	assert.Equal(t, []string{want, want}, p.seen)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.NotEqual(t, want, cwd, "process working directory is untouched")
}

func TestRoot_DeployWithoutBase(t *testing.T) {
	root := NewRoot("app", &probe{}, "")
	_, err := root.Deploy(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrConfiguration))
}

func TestRootFactory_Instantiate(t *testing.T) {
	env, service := newTestEnv(t)
	host := env.AddHost("localhost")

	factory := NewRootFactory("Frontend", probeType, "/defs")
	factory.Defaults = Attributes{"label": "default"}
	factory.Children = []ChildSpec{
		{Type: probeType, Attributes: Attributes{"label": "child"}},
	}

	root, err := factory.Instantiate(service, env, host, Attributes{"label": "override"})
	require.NoError(t, err)

	assert.Equal(t, "frontend", root.Name())
	assert.Equal(t, "/defs", root.Defdir())
	assert.Same(t, host, root.Host())
	assert.Equal(t, []*Root{root}, host.Roots())

	c := root.Component().(*probe)
	assert.Equal(t, "override", c.Label)
	assert.Same(t, root, c.Root())
	assert.Equal(t, "/defs/tpl/motd", c.DefPath("tpl/motd"))
	assert.Equal(t, filepath.Join(root.Workdir(), "motd"), c.Path("motd"))
	assert.Equal(t, "/etc/motd", c.Path("/etc/motd"))

	subs := c.SubComponents()
	require.Len(t, subs, 1)
	assert.Equal(t, "child", subs[0].(*probe).Label)
	assert.Equal(t, "probe(override) > probe(child)", subs[0].base().Breadcrumbs())
}

func TestRootFactory_InstantiateFailureDetaches(t *testing.T) {
	env, service := newTestEnv(t)
	host := env.AddHost("localhost")

	failing := Type{
		Name: "failing",
		New: func(Attributes) (Component, error) {
			return &recorder{journal: new([]string), configure: func(*recorder) error {
				return errors.New("configure failed")
			}}, nil
		},
	}

	_, err := NewRootFactory("", failing, "").Instantiate(service, env, host, nil)
	require.Error(t, err)
	assert.Empty(t, host.Roots())
}

func TestRootFactory_MissingNamevar(t *testing.T) {
	env, service := newTestEnv(t)

	_, err := NewRootFactory("", probeType, "").Instantiate(service, env, env.AddHost("h"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrConfiguration))
}

func TestEnvironment_Hosts(t *testing.T) {
	env := NewEnvironment("prod", "debian", nil)
	b := env.AddHost("b")
	env.AddHost("a")
	assert.Same(t, b, env.AddHost("b"))

	names := []string{}
	for _, h := range env.Hosts() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)

	_, ok := env.Host("c")
	assert.False(t, ok)
}

func TestWorkdirFromContext(t *testing.T) {
	_, ok := WorkdirFromContext(context.Background())
	assert.False(t, ok)

	dir, ok := WorkdirFromContext(WithWorkdir(context.Background(), "/srv/work/app"))
	assert.True(t, ok)
	assert.Equal(t, "/srv/work/app", dir)
}
