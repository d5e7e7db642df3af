package resources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/opmodel/converge/internal/component"
)

// DirectoryType manages a directory.
var DirectoryType = component.Type{
	Name:        "directory",
	Namevar:     "path",
	Description: "directory with permission bits",
	New:         decoded[Directory](),
}

// Directory is a directory that must exist with the declared mode.
type Directory struct {
	component.Base

	Path string      `attr:"path"`
	Mode fs.FileMode `attr:"mode"`

	target string
}

func (d *Directory) Configure() error {
	d.target = d.Base.Path(d.Path)
	return nil
}

func (d *Directory) Verify(context.Context) (component.Status, error) {
	info, err := os.Stat(d.target)
	if errors.Is(err, fs.ErrNotExist) {
		return component.NeedsUpdate, nil
	}
	if err != nil {
		return component.Current, err
	}
	if !info.IsDir() {
		return component.Current, fmt.Errorf("%s exists and is not a directory", d.target)
	}
	if info.Mode().Perm() != modeOrDefault(d.Mode, defaultDirMode) {
		return component.NeedsUpdate, nil
	}
	return component.Current, nil
}

func (d *Directory) Update(context.Context) error {
	mode := modeOrDefault(d.Mode, defaultDirMode)
	if err := os.MkdirAll(d.target, mode); err != nil {
		return err
	}
	return os.Chmod(d.target, mode)
}
