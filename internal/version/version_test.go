package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	// Verify struct is populated
	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	require.NotEmpty(t, info.CUESDKVersion, "CUESDKVersion should be populated")
	assert.Equal(t, Version, info.Version)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "v1.0.0",
		GitCommit:     "abc123",
		BuildDate:     "2026-01-29",
		GoVersion:     "go1.25",
		CUESDKVersion: "v0.15.4",
	}

	str := info.String()

	assert.Contains(t, str, "converge version v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "v0.15.4")
}

func TestDepVersion(t *testing.T) {
	deps := []*debug.Module{
		{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
		{Path: cueModule, Version: "v0.15.4"},
	}
	assert.Equal(t, "v0.15.4", depVersion(deps, cueModule, "x"))
	assert.Equal(t, "x", depVersion(deps, "example.com/missing", "x"))

	replaced := []*debug.Module{
		{Path: cueModule, Version: "v0.15.0", Replace: &debug.Module{Path: cueModule, Version: "v0.15.9"}},
	}
	assert.Equal(t, "v0.15.9", depVersion(replaced, cueModule, "x"))
}
