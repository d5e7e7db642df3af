package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/opmodel/converge/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue records the winning value of one setting and what it shadowed.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) CONVERGE_CONFIG env, (3) ~/.converge/config.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}
	return resolveString("config", opts.FlagValue, EnvConfig, "", paths.ConfigFile), nil
}

// ResolveOptions carries the command-line view of the settings that can
// also come from the environment or the config file.
type ResolveOptions struct {
	Environment string
	Definitions string

	// Parallel and Timestamps are nil when the flag was not given.
	Parallel   *bool
	Timestamps *bool
}

// Resolved is the effective configuration for one command invocation.
type Resolved struct {
	Environment string
	Definitions string
	Parallel    bool
	Timestamps  bool

	// Values lists the resolution of each setting for debug logging.
	Values []ResolvedValue
}

// Resolve applies precedence flag > env > config > default to every setting.
// cfg is the config file content without defaults applied; nil means no file.
func Resolve(opts ResolveOptions, cfg *Config) (*Resolved, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	def := DefaultConfig()

	env := resolveString("environment", opts.Environment, EnvEnvironment, cfg.Environment, def.Environment)
	defs := resolveString("definitions", opts.Definitions, EnvDefinitions, cfg.Definitions, def.Definitions)

	var cfgParallel *bool
	if cfg.Parallel {
		cfgParallel = &cfg.Parallel
	}
	parallel, err := resolveBool("parallel", opts.Parallel, EnvParallel, cfgParallel, def.Parallel)
	if err != nil {
		return nil, err
	}
	timestamps, err := resolveBool("log.timestamps", opts.Timestamps, EnvTimestamps, cfg.Log.Timestamps, *def.Log.Timestamps)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Environment: env.Value.(string),
		Definitions: defs.Value.(string),
		Parallel:    parallel.Value.(bool),
		Timestamps:  timestamps.Value.(bool),
		Values:      []ResolvedValue{env, defs, parallel, timestamps},
	}, nil
}

func resolveString(key, flagValue, envVar, configValue, defaultValue string) ResolvedValue {
	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, os.Getenv(envVar)},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}

	result := ResolvedValue{Key: key, Value: "", Shadowed: make(map[ConfigSource]any)}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

func resolveBool(key string, flagValue *bool, envVar string, configValue *bool, defaultValue bool) (ResolvedValue, error) {
	var envValue *bool
	if raw := os.Getenv(envVar); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return ResolvedValue{}, fmt.Errorf("invalid %s=%q: %w", envVar, raw, err)
		}
		envValue = &b
	}

	candidates := []struct {
		source ConfigSource
		value  *bool
	}{
		{SourceFlag, flagValue},
		{SourceEnv, envValue},
		{SourceConfig, configValue},
		{SourceDefault, &defaultValue},
	}

	result := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]any)}
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		if result.Source == "" {
			result.Value = *c.value
			result.Source = c.source
			continue
		}
		if c.source != SourceDefault {
			result.Shadowed[c.source] = *c.value
		}
	}
	return result, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
