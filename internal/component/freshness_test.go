package component

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAt(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestAssertFileIsCurrent(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	result := filepath.Join(dir, "result")
	older := filepath.Join(dir, "older")
	newer := filepath.Join(dir, "newer")
	writeAt(t, result, now.Add(-time.Hour))
	writeAt(t, older, now.Add(-2*time.Hour))
	writeAt(t, newer, now)

	tests := []struct {
		name   string
		result string
		reqs   []string
		want   Status
	}{
		{name: "missing result", result: filepath.Join(dir, "absent"), want: NeedsUpdate},
		{name: "no requirements", result: result, want: Current},
		{name: "newer than requirements", result: result, reqs: []string{older}, want: Current},
		{name: "older than one requirement", result: result, reqs: []string{older, newer}, want: NeedsUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := AssertFileIsCurrent(tt.result, tt.reqs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestAssertFileIsCurrent_MissingRequirement(t *testing.T) {
	dir := t.TempDir()
	result := filepath.Join(dir, "result")
	writeAt(t, result, time.Now())

	_, err := AssertFileIsCurrent(result, filepath.Join(dir, "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent")
}

func TestAssertFileIsCurrent_EqualTimesAreCurrent(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now().Add(-time.Minute)
	result := filepath.Join(dir, "result")
	req := filepath.Join(dir, "req")
	writeAt(t, result, mtime)
	writeAt(t, req, mtime)

	status, err := AssertFileIsCurrent(result, req)
	require.NoError(t, err)
	assert.Equal(t, Current, status)
}

func TestBase_TouchAndAssert(t *testing.T) {
	base := t.TempDir()
	service := &Service{Name: "svc", Base: base}
	root := &Root{name: "app", service: service}
	require.NoError(t, os.MkdirAll(root.Workdir(), 0o755))

	var b Base
	b.ctx = Context{Service: service, Root: root}

	status, err := b.AssertFileIsCurrent("stamp")
	require.NoError(t, err)
	assert.Equal(t, NeedsUpdate, status)

	require.NoError(t, b.Touch("stamp"))
	assert.FileExists(t, filepath.Join(base, "work", "app", "stamp"))

	status, err = b.AssertFileIsCurrent("stamp")
	require.NoError(t, err)
	assert.Equal(t, Current, status)
}
