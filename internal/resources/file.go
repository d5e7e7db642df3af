package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opmodel/converge/internal/component"
	cerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// FileType manages the content and mode of a file.
var FileType = component.Type{
	Name:        "file",
	Namevar:     "path",
	Description: "file with literal, expanded or templated content",
	New:         decoded[File](),
}

// File is a regular file with declared content.
//
// Content is written as is unless Expand is set. Source names a template file
// relative to the definition directory and takes precedence over Content.
type File struct {
	component.Base

	Path    string `attr:"path"`
	Content string `attr:"content"`
	Source  string `attr:"source"`
	Expand  bool   `attr:"expand"`
	Mode    fs.FileMode `attr:"mode"`

	target   string
	rendered []byte
}

// Configure renders the desired content.
func (f *File) Configure() error {
	if f.Source != "" && f.Content != "" {
		return cerrors.NewConfigurationError(
			fmt.Sprintf("file %s sets both content and source", f.Path), "", "source",
			"keep one of content or source")
	}
	f.target = f.Base.Path(f.Path)

	switch {
	case f.Source != "":
		out, err := f.Base.Template(f.Source, nil)
		if err != nil {
			return err
		}
		f.rendered = []byte(out)
	case f.Expand:
		out, err := f.Base.Expand(f.Content)
		if err != nil {
			return err
		}
		f.rendered = []byte(out)
	default:
		f.rendered = []byte(f.Content)
	}
	return nil
}

// Verify compares content and permission bits.
func (f *File) Verify(context.Context) (component.Status, error) {
	info, err := os.Stat(f.target)
	if errors.Is(err, fs.ErrNotExist) {
		return component.NeedsUpdate, nil
	}
	if err != nil {
		return component.Current, err
	}
	if info.IsDir() {
		return component.Current, fmt.Errorf("%s is a directory", f.target)
	}
	if info.Mode().Perm() != modeOrDefault(f.Mode, defaultFileMode) {
		return component.NeedsUpdate, nil
	}
	data, err := os.ReadFile(f.target)
	if err != nil {
		return component.Current, err
	}
	if !bytes.Equal(data, f.rendered) {
		return component.NeedsUpdate, nil
	}
	return component.Current, nil
}

// Update writes the file, creating parent directories as needed.
func (f *File) Update(context.Context) error {
	mode := modeOrDefault(f.Mode, defaultFileMode)
	if err := os.MkdirAll(filepath.Dir(f.target), defaultDirMode); err != nil {
		return err
	}
	output.Debug("writing file", "path", f.target, "bytes", len(f.rendered))
	if err := os.WriteFile(f.target, f.rendered, mode); err != nil {
		return err
	}
	return os.Chmod(f.target, mode)
}

// Target returns the resolved file path.
func (f *File) Target() string { return f.target }
