package component

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// AssertFileIsCurrent compares modification times. It returns NeedsUpdate
// if result does not exist or is older than any requirement, Current
// otherwise. A requirement that cannot be stat'ed is an error.
func AssertFileIsCurrent(result string, requirements ...string) (Status, error) {
	info, err := os.Stat(result)
	if errors.Is(err, fs.ErrNotExist) {
		return NeedsUpdate, nil
	}
	if err != nil {
		return Current, fmt.Errorf("stat %s: %w", result, err)
	}
	current := info.ModTime()
	for _, req := range requirements {
		rinfo, err := os.Stat(req)
		if err != nil {
			return Current, fmt.Errorf("stat requirement %s: %w", req, err)
		}
		if current.Before(rinfo.ModTime()) {
			return NeedsUpdate, nil
		}
	}
	return Current, nil
}

// AssertFileIsCurrent is AssertFileIsCurrent with all paths resolved
// against the root's work directory.
func (b *Base) AssertFileIsCurrent(result string, requirements ...string) (Status, error) {
	reqs := make([]string, len(requirements))
	for i, r := range requirements {
		reqs[i] = b.Path(r)
	}
	return AssertFileIsCurrent(b.Path(result), reqs...)
}

// Touch creates path if it does not exist and sets its modification time
// to now. Relative paths resolve against the root's work directory.
func (b *Base) Touch(path string) error {
	path = b.Path(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}
