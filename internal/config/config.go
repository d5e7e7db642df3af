// Package config provides configuration loading and management.
package config

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the converge CLI configuration.
// Loaded from ~/.converge/config.yaml.
type Config struct {
	// Environment is the default environment file for deploy and hooks.
	// Env: CONVERGE_ENVIRONMENT
	Environment string `mapstructure:"environment" yaml:"environment,omitempty"`

	// Definitions is the default definition file or directory.
	// Env: CONVERGE_DEFINITIONS
	Definitions string `mapstructure:"definitions" yaml:"definitions,omitempty"`

	// Parallel deploys hosts concurrently.
	// Env: CONVERGE_PARALLEL, Default: false
	Parallel bool `mapstructure:"parallel" yaml:"parallel"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	timestamps := true
	return &Config{
		Definitions: ".",
		Log:         LogConfig{Timestamps: &timestamps},
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Definitions == "" {
		out.Definitions = def.Definitions
	}
	if out.Log.Timestamps == nil {
		out.Log.Timestamps = def.Log.Timestamps
	}
	return &out
}
