package cmdutil

import (
	"cuelang.org/go/cue/cuecontext"

	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/deploy"
	"github.com/opmodel/converge/internal/environment"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/loader"
	"github.com/opmodel/converge/internal/output"
	"github.com/opmodel/converge/internal/resources"
)

// LoadDefinitions loads the root factories defined at path using the
// built-in component types.
func LoadDefinitions(path string) ([]*component.RootFactory, error) {
	output.Debug("loading definitions", "path", path)
	factories, err := loader.Load(cuecontext.New(), path, resources.NewRegistry())
	if err != nil {
		return nil, err
	}
	output.Debug("definitions loaded", "path", path, "roots", len(factories))
	return factories, nil
}

// PlanOptions configures LoadPlan.
type PlanOptions struct {
	// Definitions is the definitions file or directory.
	Definitions string

	// Environment is the environment file.
	Environment string

	// Runner overrides the command runner. Nil uses the shell.
	Runner component.Runner
}

// LoadPlan loads definitions and the environment and instantiates every
// root of every host.
func LoadPlan(opts PlanOptions) (*deploy.Plan, error) {
	if opts.Environment == "" {
		return nil, oerrors.NewConfigurationError(
			"no environment file given", "", "environment",
			"Pass --environment or set CONVERGE_ENVIRONMENT")
	}

	factories, err := LoadDefinitions(opts.Definitions)
	if err != nil {
		return nil, err
	}

	env, err := environment.Load(opts.Environment)
	if err != nil {
		return nil, err
	}

	return deploy.NewPlan(deploy.PlanOptions{
		File:      env,
		Factories: factories,
		Runner:    opts.Runner,
	})
}
