package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/converge/internal/component"
	cerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/loader"
	"github.com/opmodel/converge/internal/resources"
)

const siteDefinition = `
components: {
	Webserver: {
		type: "group"
		attributes: name: "web"
		components: [
			{type: "directory", attributes: path: "htdocs"},
			{
				type: "file"
				attributes: {
					path:    "htdocs/index.html"
					content: "hello"
					mode:    "0640"
				}
			},
		]
	}
	app: {
		type: "command"
		attributes: {
			command:  "make"
			creates:  "build/app"
			requires: ["Makefile"]
		}
	}
}
`

func writeDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "site.cue", siteDefinition)

	factories, err := loader.LoadFile(cuecontext.New(), path, resources.NewRegistry())
	require.NoError(t, err)
	require.Len(t, factories, 2)

	app, web := factories[0], factories[1]
	assert.Equal(t, "app", app.Name)
	assert.Equal(t, "webserver", web.Name)
	assert.Equal(t, dir, web.Defdir)

	assert.Equal(t, "command", app.Type.Name)
	assert.Equal(t, "make", app.Defaults["command"])
	assert.Equal(t, []any{"Makefile"}, app.Defaults["requires"])

	assert.Equal(t, "group", web.Type.Name)
	require.Len(t, web.Children, 2)
	assert.Equal(t, "directory", web.Children[0].Type.Name)
	assert.Equal(t, "file", web.Children[1].Type.Name)
	assert.Equal(t, "0640", web.Children[1].Attributes["mode"])
}

func TestLoad_Instantiates(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "site.cue", siteDefinition)

	factories, err := loader.Load(cuecontext.New(), path, resources.NewRegistry())
	require.NoError(t, err)

	service := &component.Service{Name: "site", Base: t.TempDir()}
	env := component.NewEnvironment("test", "", service)
	root, err := factories[1].Instantiate(service, env, env.AddHost("web01"), nil)
	require.NoError(t, err)

	subs := component.BaseOf(root.Component()).SubComponents()
	require.Len(t, subs, 2)
	assert.Equal(t, "Group(web) > File(htdocs/index.html)", component.BaseOf(subs[1]).Breadcrumbs())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a.cue", `components: motd: {type: "file", attributes: path: "motd"}`)
	writeDefinition(t, dir, "b.cue", `components: motd: attributes: content: "hi"
components: cache: {type: "directory", attributes: path: "cache"}`)
	writeDefinition(t, dir, "README.md", "not cue")

	factories, err := loader.Load(cuecontext.New(), dir, resources.NewRegistry())
	require.NoError(t, err)
	require.Len(t, factories, 2)

	assert.Equal(t, "cache", factories[0].Name)
	assert.Equal(t, "motd", factories[1].Name)
	assert.Equal(t, component.Attributes{"path": "motd", "content": "hi"}, factories[1].Defaults)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
		contains string
	}{
		{
			name:     "unknown type",
			content:  `components: x: type: "nope"`,
			sentinel: cerrors.ErrNotFound,
			contains: "command, directory, file, group, package, secrets",
		},
		{
			name:     "missing type",
			content:  `components: x: attributes: path: "a"`,
			sentinel: cerrors.ErrValidation,
			contains: "component has no type",
		},
		{
			name:     "no components",
			content:  `other: 1`,
			sentinel: cerrors.ErrValidation,
			contains: "declares no components",
		},
		{
			name:     "not concrete",
			content:  `components: x: {type: "file", attributes: path: string}`,
			sentinel: cerrors.ErrValidation,
			contains: "concrete",
		},
		{
			name:     "case-insensitive duplicate",
			content:  `components: {App: type: "group", app: type: "group"}`,
			sentinel: cerrors.ErrValidation,
			contains: "same name",
		},
		{
			name:     "unknown nested type",
			content:  `components: x: {type: "group", components: [{type: "nope"}]}`,
			sentinel: cerrors.ErrNotFound,
			contains: "components.x.components[0].type",
		},
		{
			name:     "syntax error",
			content:  `components: {`,
			sentinel: cerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDefinition(t, t.TempDir(), "def.cue", tt.content)
			_, err := loader.Load(cuecontext.New(), path, resources.NewRegistry())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := loader.Load(cuecontext.New(), filepath.Join(t.TempDir(), "absent.cue"), resources.NewRegistry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrNotFound))
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := loader.LoadDir(cuecontext.New(), t.TempDir(), resources.NewRegistry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrNotFound))
}
