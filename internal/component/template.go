package component

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// TemplateArgs is the data passed to templates.
type TemplateArgs struct {
	Host        *Host
	Environment *Environment
	Service     *Service
	Component   Component
}

// Renderer renders template text and template files.
type Renderer interface {
	Expand(text string, args TemplateArgs) (string, error)
	Template(path string, args TemplateArgs) (string, error)
}

// TextRenderer renders with text/template. Missing keys are errors.
type TextRenderer struct{}

// Expand implements Renderer.
func (TextRenderer) Expand(text string, args TemplateArgs) (string, error) {
	return render("inline", text, args)
}

// Template implements Renderer.
func (TextRenderer) Template(path string, args TemplateArgs) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return render(filepath.Base(path), string(data), args)
}

func render(name, text string, args TemplateArgs) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, args); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return sb.String(), nil
}

// Expand renders text with this component's template arguments.
func (b *Base) Expand(text string) (string, error) {
	return b.ctx.Environment.renderer().Expand(text, b.templateArgs(nil))
}

// Template renders the template file at path. Relative paths resolve against
// the definition directory. A nil component renders with b's component.
func (b *Base) Template(path string, c Component) (string, error) {
	return b.ctx.Environment.renderer().Template(b.DefPath(path), b.templateArgs(c))
}

func (b *Base) templateArgs(c Component) TemplateArgs {
	if isNil(c) {
		c = b.self
	}
	args := TemplateArgs{
		Host:        b.ctx.Host,
		Environment: b.ctx.Environment,
		Service:     b.ctx.Service,
		Component:   c,
	}
	if args.Service == nil && b.ctx.Environment != nil {
		args.Service = b.ctx.Environment.Service
	}
	return args
}
