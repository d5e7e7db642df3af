package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/config"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the converge CLI.`,
	}

	c.AddCommand(NewConfigInitCmd(cfg))
	c.AddCommand(NewConfigVetCmd(cfg))

	return c
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(cfg *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the converge configuration.

Creates ~/.converge/config.yaml (or the file named by --config or
CONVERGE_CONFIG) with the default settings.

Examples:
  # Initialize configuration
  converge config init

  # Overwrite existing configuration
  converge config init --force`,
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigInit(cfg, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

func runConfigInit(cfg *GlobalConfig, force bool) error {
	path, err := configPath(cfg)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return printed("config init", &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		})
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return oerrors.Wrap(oerrors.ErrConfiguration, "could not create configuration directory")
	}
	if err := os.WriteFile(expanded, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return oerrors.Wrap(oerrors.ErrConfiguration, "could not write "+expanded)
	}

	output.Println(output.FormatCheckmark("Configuration initialized at " + expanded))
	output.Println("Validate with: converge config vet")
	return nil
}

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the converge configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML
  3. Config matches the configuration schema (known keys, value types)

The config path is resolved using precedence:
  --config flag > CONVERGE_CONFIG env > ~/.converge/config.yaml`,
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigVet(cfg)
		},
	}
}

func runConfigVet(cfg *GlobalConfig) error {
	path, err := configPath(cfg)
	if err != nil {
		return err
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	output.Debug("validating config", "path", expanded)

	if _, err := os.Stat(expanded); errors.Is(err, fs.ErrNotExist) {
		return printed("config vet", oerrors.NewNotFoundError(
			"configuration file not found", expanded,
			"Run 'converge config init' to create default configuration"))
	}

	validator, err := config.NewValidator()
	if err != nil {
		return err
	}
	if err := validator.ValidateFile(expanded); err != nil {
		return printed("config vet", err)
	}

	output.Println(output.FormatCheckmark("Configuration is valid: " + expanded))
	return nil
}

// configPath returns the config path resolved by the root command, or
// resolves it when the command runs standalone.
func configPath(cfg *GlobalConfig) (string, error) {
	if cfg != nil && cfg.ConfigPath != "" {
		return cfg.ConfigPath, nil
	}
	resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{})
	if err != nil {
		return "", oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path")
	}
	return resolved.Value.(string), nil
}
