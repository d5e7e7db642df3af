package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/testutil"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()
	require.NoError(t, w.Close())
	return <-done
}

func TestHooksCmd_JSON(t *testing.T) {
	isolate(t)
	site := testutil.NewSite(t, map[string]string{"site.cue": webDefinitions}, twoHosts)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "hooks", "secrets", site.Definitions, "-e", site.Environment, "-o", "json")
	})
	require.NoError(t, runErr)

	var hooks []hookSummary
	require.NoError(t, json.Unmarshal([]byte(out), &hooks))
	require.Len(t, hooks, 1)
	assert.Equal(t, "web01", hooks[0].Host)
	assert.Equal(t, "Secrets", hooks[0].Owner)
	assert.Equal(t, map[string]any{"token": "<redacted>"}, hooks[0].Payload)
}

func TestHooksCmd_Reveal(t *testing.T) {
	isolate(t)
	site := testutil.NewSite(t, map[string]string{"site.cue": webDefinitions}, twoHosts)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "hooks", "secrets", site.Definitions, "-e", site.Environment, "-o", "yaml", "--reveal")
	})
	require.NoError(t, runErr)
	assert.Contains(t, out, "token: s3cr3t")
}

func TestHooksCmd_HostWithoutHooks(t *testing.T) {
	isolate(t)
	site := testutil.NewSite(t, map[string]string{"site.cue": webDefinitions}, twoHosts)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "hooks", "secrets", site.Definitions, "-e", site.Environment, "--host", "web02", "-o", "json")
	})
	require.NoError(t, runErr)
	assert.JSONEq(t, "[]", out)
}

func TestHooksCmd_InvalidFormat(t *testing.T) {
	isolate(t)
	err := execute(t, "hooks", "secrets", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitValidationError, exitCode(t, err))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "<redacted>"}, redact(map[string]string{"a": "x"}))
	assert.Equal(t, "<redacted>", redact("plain"))
}

func TestTreeCmd(t *testing.T) {
	isolate(t)
	site := testutil.NewSite(t, map[string]string{"site.cue": webDefinitions}, twoHosts)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "tree", site.Definitions, "-e", site.Environment, "--host", "web01")
	})
	require.NoError(t, runErr)
	assert.Contains(t, out, "web01")
	assert.NotContains(t, out, "web02")
	assert.Contains(t, out, "Group(web)")
	assert.Contains(t, out, "Directory(htdocs)")
	assert.Contains(t, out, "File(htdocs/index.html)")
	assert.Contains(t, out, "Secrets")
}

func TestHostTree(t *testing.T) {
	node := hostTree("db01", nil)
	assert.Equal(t, "db01", node.Name)
	assert.Equal(t, "no roots prepared", node.Annotation)
	assert.Empty(t, node.Children)
}

func TestComponentsCmd(t *testing.T) {
	isolate(t)
	site := testutil.NewSite(t, map[string]string{"site.cue": webDefinitions}, twoHosts)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "components", site.Definitions, "-o", "json")
	})
	require.NoError(t, runErr)

	var roots []rootSummary
	require.NoError(t, json.Unmarshal([]byte(out), &roots))
	require.Len(t, roots, 3)
	assert.Equal(t, "broken", roots[0].Name)
	assert.Equal(t, "vault", roots[1].Name)
	assert.Equal(t, "web", roots[2].Name)
	assert.Equal(t, "group", roots[2].Type)
	assert.Equal(t, 2, roots[2].Children)
}

func TestComponentsCmd_Types(t *testing.T) {
	isolate(t)

	var runErr error
	out := captureStdout(t, func() {
		runErr = execute(t, "components", "--types", "-o", "json")
	})
	require.NoError(t, runErr)

	var types []typeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &types))

	byName := make(map[string]typeSummary)
	for _, ts := range types {
		byName[ts.Name] = ts
	}
	require.Contains(t, byName, "package")
	assert.Equal(t, "name", byName["package"].Namevar)
	assert.Equal(t, []string{"darwin", "debian"}, byName["package"].Platforms)
	assert.Equal(t, "path", byName["file"].Namevar)
}
