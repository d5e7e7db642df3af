// Package cmdutil provides shared command utilities for converge subcommands.
// It centralizes flag group management, definition and environment loading,
// and report formatting helpers.
package cmdutil

import (
	"github.com/spf13/cobra"
)

// DefinitionFlags holds the flag naming the definitions to load
// (deploy, hooks, tree, components).
type DefinitionFlags struct {
	Definitions string
}

// AddTo registers the definition flags on the given cobra command.
func (f *DefinitionFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Definitions, "definitions", "d", "",
		"Definitions file or directory (env: CONVERGE_DEFINITIONS, default: .)")
}

// EnvironmentFlags holds flags selecting the environment and hosts
// (deploy, hooks, tree).
type EnvironmentFlags struct {
	Environment string
	Hosts       []string
}

// AddTo registers the environment flags on the given cobra command.
func (f *EnvironmentFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Environment, "environment", "e", "",
		"Environment file (env: CONVERGE_ENVIRONMENT)")
	cmd.Flags().StringSliceVar(&f.Hosts, "host", nil,
		"Restrict to these hosts (can be repeated or comma-separated)")
}

// ResolveDefinitionsPath returns the definitions path from command args,
// falling back to the flag value. An empty result lets the configured
// default apply.
func ResolveDefinitionsPath(args []string, flagValue string) string {
	if len(args) > 0 {
		return args[0]
	}
	return flagValue
}
