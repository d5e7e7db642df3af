package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/cmdutil"
	"github.com/opmodel/converge/internal/config"
	"github.com/opmodel/converge/internal/output"
	"github.com/opmodel/converge/internal/resources"
)

type componentsOptions struct {
	defs   cmdutil.DefinitionFlags
	types  bool
	format string
}

// rootSummary describes one root factory in structured output.
type rootSummary struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Children int    `json:"children" yaml:"children"`
	Defdir   string `json:"defdir" yaml:"defdir"`
}

// typeSummary describes one registered component type in structured output.
type typeSummary struct {
	Name        string   `json:"name" yaml:"name"`
	Namevar     string   `json:"namevar,omitempty" yaml:"namevar,omitempty"`
	Platforms   []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

// NewComponentsCmd creates the components command.
func NewComponentsCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &componentsOptions{}

	c := &cobra.Command{
		Use:   "components [definitions]",
		Short: "List defined root components or built-in component types",
		Long: `List the root components defined in a definitions file or directory.

With --types, list the built-in component types instead, with their namevar
and the platforms they have specializations for.

Examples:
  converge components ./site
  converge components --types -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runComponents(cfg, opts, args)
		},
	}

	opts.defs.AddTo(c)
	c.Flags().BoolVar(&opts.types, "types", false, "List built-in component types")
	c.Flags().StringVarP(&opts.format, "output", "o", "table",
		fmt.Sprintf("Output format: %s", strings.Join(output.ValidFormats(), ", ")))

	return c
}

func runComponents(cfg *GlobalConfig, opts *componentsOptions, args []string) error {
	format, ok := output.ParseFormat(opts.format)
	if !ok {
		return invalidFormat(opts.format)
	}

	if opts.types {
		return writeTypes(format)
	}

	resolved, err := cfg.Resolve(config.ResolveOptions{
		Definitions: cmdutil.ResolveDefinitionsPath(args, opts.defs.Definitions),
	})
	if err != nil {
		return printed("resolving configuration", err)
	}

	factories, err := cmdutil.LoadDefinitions(resolved.Definitions)
	if err != nil {
		return printed("loading definitions", err)
	}

	summaries := make([]rootSummary, 0, len(factories))
	for _, f := range factories {
		summaries = append(summaries, rootSummary{
			Name:     f.Name,
			Type:     f.Type.Name,
			Children: len(f.Children),
			Defdir:   f.Defdir,
		})
	}

	if format != output.FormatTable {
		return output.Encode(os.Stdout, format, summaries)
	}
	if len(summaries) == 0 {
		output.Println("No root components defined in " + resolved.Definitions)
		return nil
	}
	tbl := output.NewTable("NAME", "TYPE", "CHILDREN", "DEFINED IN")
	for _, s := range summaries {
		tbl.Row(s.Name, s.Type, fmt.Sprint(s.Children), s.Defdir)
	}
	output.Println(tbl.String())
	return nil
}

func writeTypes(format output.Format) error {
	reg := resources.NewRegistry()

	summaries := make([]typeSummary, 0)
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		summaries = append(summaries, typeSummary{
			Name:        t.Name,
			Namevar:     t.Namevar,
			Platforms:   t.Platforms(),
			Description: t.Description,
		})
	}

	if format != output.FormatTable {
		return output.Encode(os.Stdout, format, summaries)
	}
	tbl := output.NewTable("TYPE", "NAMEVAR", "PLATFORMS", "DESCRIPTION")
	for _, s := range summaries {
		tbl.Row(s.Name, s.Namevar, strings.Join(s.Platforms, ","), s.Description)
	}
	output.Println(tbl.String())
	return nil
}
