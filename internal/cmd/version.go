package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/output"
	"github.com/opmodel/converge/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show converge version information.

Displays:
  - converge version, commit, and build date
  - CUE SDK version used to evaluate definitions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
