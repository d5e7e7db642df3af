package component

import "path/filepath"

// Workdir returns the work directory of the root owning the tree, or "" if
// the component is not attached to a root.
func (b *Base) Workdir() string {
	if b.ctx.Root == nil {
		return ""
	}
	return b.ctx.Root.Workdir()
}

// Path resolves rel against the root's work directory. Absolute paths are
// returned cleaned.
func (b *Base) Path(rel string) string {
	return resolve(b.Workdir(), rel)
}

// DefPath resolves rel against the directory of the definition the tree was
// loaded from.
func (b *Base) DefPath(rel string) string {
	dir := ""
	if b.ctx.Root != nil {
		dir = b.ctx.Root.Defdir()
	}
	return resolve(dir, rel)
}

func resolve(dir, rel string) string {
	if filepath.IsAbs(rel) || dir == "" {
		return filepath.Clean(rel)
	}
	return filepath.Join(dir, rel)
}
