// Package testutil provides test helpers for CLI tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// Site is a throwaway deployment: a definitions directory, an environment
// file and the service base the environment points at.
type Site struct {
	// Dir is the site root.
	Dir string

	// Definitions is the definitions directory.
	Definitions string

	// Environment is the environment file path.
	Environment string

	// Base is the service base directory.
	Base string
}

// Work returns the work directory of the named root component.
func (s *Site) Work(root string, parts ...string) string {
	return filepath.Join(append([]string{s.Base, "work", root}, parts...)...)
}

// NewSite writes definitions (file name -> CUE source) and an environment
// file whose service base is <dir>/srv. The environment content may use
// the literal "BASE" as a placeholder for the base path.
func NewSite(t *testing.T, definitions map[string]string, environment string) *Site {
	t.Helper()
	dir := t.TempDir()
	s := &Site{
		Dir:         dir,
		Definitions: filepath.Join(dir, "defs"),
		Base:        filepath.Join(dir, "srv"),
	}
	if err := os.MkdirAll(s.Definitions, 0o755); err != nil {
		t.Fatalf("failed to create definitions dir: %v", err)
	}
	for name, content := range definitions {
		WriteFile(t, s.Definitions, name, content)
	}
	s.Environment = WriteFile(t, dir, "env.yaml", strings.ReplaceAll(environment, "BASE", s.Base))
	return s
}
