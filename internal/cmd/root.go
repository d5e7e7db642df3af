// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/config"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is the config file content, without defaults applied. Nil when
	// no config file exists.
	Config *config.Config

	// ConfigPath is the resolved --config path.
	ConfigPath string

	// Verbose enables debug logging and lists current components.
	Verbose bool

	// Timestamps is the resolved timestamp setting.
	Timestamps *bool
}

// Resolve applies flag > env > config > default precedence to the
// command-level settings and logs the outcome at debug level.
func (g *GlobalConfig) Resolve(opts config.ResolveOptions) (*config.Resolved, error) {
	if opts.Timestamps == nil {
		opts.Timestamps = g.Timestamps
	}
	resolved, err := config.Resolve(opts, g.Config)
	if err != nil {
		return nil, oerrors.NewConfigurationError(err.Error(), "", "", "Check CONVERGE_* environment variables")
	}
	config.LogResolvedValues(resolved.Values)
	return resolved, nil
}

// NewRootCmd creates the root command for the converge CLI.
func NewRootCmd() *cobra.Command {
	cfg := &GlobalConfig{}
	var (
		configFlag     string
		timestampsFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "converge",
		Short: "Declarative component deployment",
		Long: `converge deploys trees of declarative components to the hosts of an
environment. Every component verifies its target first and updates it only
when it has drifted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var timestamps *bool
			if cmd.Flags().Changed("timestamps") {
				timestamps = output.BoolPtr(timestampsFlag)
			}
			return initializeGlobals(cfg, configFlag, timestamps)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: CONVERGE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output (env: CONVERGE_LOG_TIMESTAMPS)")

	rootCmd.AddCommand(NewDeployCmd(cfg))
	rootCmd.AddCommand(NewComponentsCmd(cfg))
	rootCmd.AddCommand(NewHooksCmd(cfg))
	rootCmd.AddCommand(NewTreeCmd(cfg))
	rootCmd.AddCommand(NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads the config file and sets up logging.
func initializeGlobals(cfg *GlobalConfig, configFlag string, timestamps *bool) error {
	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path")
	}
	cfg.ConfigPath = pathResult.Value.(string)

	loaded, err := config.NewLoader().Load(cfg.ConfigPath)
	if err != nil {
		output.SetupLogging(output.LogConfig{Verbose: cfg.Verbose, Timestamps: timestamps})
		return &oerrors.ExitError{Err: err, Code: oerrors.ExitCodeFromError(err)}
	}
	cfg.Config = loaded

	// Timestamps: flag (if explicitly set) > env > config > default(true)
	resolved, err := config.Resolve(config.ResolveOptions{Timestamps: timestamps}, loaded)
	if err != nil {
		return oerrors.NewConfigurationError(err.Error(), "", "log.timestamps", "")
	}
	cfg.Timestamps = output.BoolPtr(resolved.Timestamps)

	output.SetupLogging(output.LogConfig{
		Verbose:    cfg.Verbose,
		Timestamps: cfg.Timestamps,
	})

	output.Debug("initializing CLI",
		"config", cfg.ConfigPath,
		"config_source", pathResult.Source,
		"timestamps", *cfg.Timestamps,
	)
	return nil
}
