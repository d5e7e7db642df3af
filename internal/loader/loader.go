// Package loader reads CUE definition files into root component factories.
//
// A definition declares root components under a top-level "components"
// struct. Each entry names a registered component type, its attributes and
// optionally nested sub-components:
//
//	components: {
//		frontend: {
//			type: "group"
//			attributes: name: "frontend"
//			components: [
//				{type: "directory", attributes: path: "htdocs"},
//				{type: "file", attributes: {path: "htdocs/index.html", source: "index.html.tmpl"}},
//			]
//		}
//	}
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/load"

	"github.com/opmodel/converge/internal/component"
	cerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// Load reads definitions from path, which may be a single .cue file or a
// directory of .cue files evaluated together.
func Load(cueCtx *cue.Context, path string, reg *component.Registry) ([]*component.RootFactory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving definition path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, cerrors.NewNotFoundError(
			fmt.Sprintf("definition path not found: %v", err), path,
			"pass a .cue file or a directory containing .cue files")
	}
	if info.IsDir() {
		return LoadDir(cueCtx, abs, reg)
	}
	return LoadFile(cueCtx, abs, reg)
}

// LoadFile compiles a single definition file.
func LoadFile(cueCtx *cue.Context, path string, reg *component.Registry) ([]*component.RootFactory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	v := cueCtx.CompileBytes(content, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("compiling definition: %v", err), path, "", "")
	}
	return extract(v, filepath.Dir(path), path, reg)
}

// LoadDir evaluates all top-level .cue files in dir as one instance.
func LoadDir(cueCtx *cue.Context, dir string, reg *component.Registry) ([]*component.RootFactory, error) {
	files, err := cueFilesInDir(dir)
	if err != nil {
		return nil, fmt.Errorf("enumerating definition files: %w", err)
	}
	if len(files) == 0 {
		return nil, cerrors.NewNotFoundError(
			"no .cue files found", dir, "add a definition file declaring a components struct")
	}

	args := make([]string, 0, len(files))
	for _, f := range files {
		args = append(args, "./"+filepath.Base(f))
	}
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances found in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("loading definitions: %v", inst.Err), dir, "", "")
	}

	v := cueCtx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("evaluating definitions: %v", err), dir, "", "")
	}
	return extract(v, dir, dir, reg)
}

func extract(v cue.Value, defdir, location string, reg *component.Registry) ([]*component.RootFactory, error) {
	componentsValue := v.LookupPath(cue.ParsePath("components"))
	if !componentsValue.Exists() {
		return nil, cerrors.NewValidationError(
			"definition declares no components", location, "components",
			"declare root components under a top-level \"components\" struct")
	}
	if err := componentsValue.Validate(cue.Concrete(true)); err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("components must be concrete: %v", err), location, "components", "")
	}

	iter, err := componentsValue.Fields()
	if err != nil {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("components is not a struct: %v", err), location, "components", "")
	}

	seen := make(map[string]string)
	var factories []*component.RootFactory
	for iter.Next() {
		key := iter.Selector().Unquoted()
		name := strings.ToLower(key)
		if prev, ok := seen[name]; ok {
			return nil, cerrors.NewValidationError(
				fmt.Sprintf("components %q and %q have the same name", prev, key),
				location, "components."+key, "root names are case-insensitive")
		}
		seen[name] = key

		spec, err := parseSpec(iter.Value(), "components."+key, location, reg)
		if err != nil {
			return nil, err
		}
		f := component.NewRootFactory(name, spec.Type, defdir)
		f.Defaults = spec.Attributes
		f.Children = spec.Children
		factories = append(factories, f)
	}

	sort.Slice(factories, func(i, j int) bool { return factories[i].Name < factories[j].Name })

	output.Debug("loaded definitions", "location", location, "components", len(factories))
	return factories, nil
}

func parseSpec(v cue.Value, field, location string, reg *component.Registry) (component.ChildSpec, error) {
	var spec component.ChildSpec

	typeValue := v.LookupPath(cue.ParsePath("type"))
	if !typeValue.Exists() {
		return spec, cerrors.NewValidationError(
			"component has no type", location, field+".type",
			fmt.Sprintf("available types: %s", strings.Join(reg.Names(), ", ")))
	}
	typeName, err := typeValue.String()
	if err != nil {
		return spec, cerrors.NewValidationError(
			fmt.Sprintf("type must be a string: %v", err), location, field+".type", "")
	}
	t, ok := reg.Lookup(typeName)
	if !ok {
		return spec, &cerrors.DetailError{
			Type:     "not found",
			Message:  fmt.Sprintf("unknown component type %q", typeName),
			Location: location,
			Field:    field + ".type",
			Context:  map[string]string{"available": strings.Join(reg.Names(), ", ")},
			Hint:     "register the type or fix the spelling",
			Cause:    cerrors.ErrNotFound,
		}
	}
	spec.Type = t

	spec.Attributes = component.Attributes{}
	if attrs := v.LookupPath(cue.ParsePath("attributes")); attrs.Exists() {
		if err := attrs.Decode(&spec.Attributes); err != nil {
			return spec, cerrors.NewValidationError(
				fmt.Sprintf("decoding attributes: %v", err), location, field+".attributes", "")
		}
	}

	if children := v.LookupPath(cue.ParsePath("components")); children.Exists() {
		list, err := children.List()
		if err != nil {
			return spec, cerrors.NewValidationError(
				fmt.Sprintf("components must be a list: %v", err), location, field+".components", "")
		}
		for i := 0; list.Next(); i++ {
			child, err := parseSpec(list.Value(), fmt.Sprintf("%s.components[%d]", field, i), location, reg)
			if err != nil {
				return spec, err
			}
			spec.Children = append(spec.Children, child)
		}
	}
	return spec, nil
}

// cueFilesInDir returns the absolute paths of all top-level .cue files in
// dir in lexical order.
func cueFilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
