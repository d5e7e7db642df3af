package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/cmdutil"
	"github.com/opmodel/converge/internal/config"
	"github.com/opmodel/converge/internal/deploy"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

type deployOptions struct {
	defs        cmdutil.DefinitionFlags
	env         cmdutil.EnvironmentFlags
	parallel    bool
	maxParallel int
}

// NewDeployCmd creates the deploy command.
func NewDeployCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &deployOptions{}

	c := &cobra.Command{
		Use:   "deploy [definitions]",
		Short: "Deploy root components to the hosts of an environment",
		Long: `Deploy the root components assigned to each host of an environment.

Every component is verified first and updated only when it has drifted.
Sub-components settle before their parents. A host stops at its first
failure; other hosts carry on.

Arguments:
  definitions    Definitions file or directory (default: CONVERGE_DEFINITIONS or .)

Examples:
  # Deploy every host of the production environment
  converge deploy ./site -e envs/production.yaml

  # Deploy two hosts concurrently
  converge deploy -e envs/production.yaml --host web01,web02 --parallel`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var parallel *bool
			if c.Flags().Changed("parallel") {
				parallel = &opts.parallel
			}
			return runDeploy(c.Context(), cfg, opts, args, parallel)
		},
	}

	opts.defs.AddTo(c)
	opts.env.AddTo(c)
	c.Flags().BoolVar(&opts.parallel, "parallel", false, "Deploy hosts concurrently (env: CONVERGE_PARALLEL)")
	c.Flags().IntVar(&opts.maxParallel, "max-parallel", 0, "Maximum concurrent hosts with --parallel (0 = unlimited)")

	return c
}

func runDeploy(ctx context.Context, cfg *GlobalConfig, opts *deployOptions, args []string, parallel *bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	resolved, err := cfg.Resolve(config.ResolveOptions{
		Environment: opts.env.Environment,
		Definitions: cmdutil.ResolveDefinitionsPath(args, opts.defs.Definitions),
		Parallel:    parallel,
	})
	if err != nil {
		return printed("resolving configuration", err)
	}

	plan, err := cmdutil.LoadPlan(cmdutil.PlanOptions{
		Definitions: resolved.Definitions,
		Environment: resolved.Environment,
	})
	if err != nil {
		return printed("preparing deployment", err)
	}

	output.Info("deploying",
		"run", plan.RunID,
		"environment", plan.Environment.Name,
		"hosts", strings.Join(selectedOrAll(opts.env.Hosts, plan.Hosts()), ","),
		"parallel", resolved.Parallel,
	)

	var result *deploy.Result
	err = output.RunWithSpinner(ctx, func() error {
		var runErr error
		result, runErr = plan.Run(ctx, deploy.RunOptions{
			Hosts:       opts.env.Hosts,
			Parallel:    resolved.Parallel,
			MaxParallel: opts.maxParallel,
			OnHostDone: func(hr deploy.HostResult) {
				output.Debug("host done", "host", hr.Host, "failed", hr.Err != nil)
			},
		})
		return runErr
	}, output.WithTitle(fmt.Sprintf("Deploying %s", plan.Environment.Name)))
	if err != nil {
		return printed("deploy failed", err)
	}

	for _, hr := range result.Hosts {
		cmdutil.WriteHostResult(hr, cfg.Verbose)
	}
	cmdutil.WriteSummary(result)

	if err := result.Err(); err != nil {
		return &oerrors.ExitError{Err: err, Code: oerrors.ExitDeployError, Printed: true}
	}
	return nil
}

func selectedOrAll(selected, all []string) []string {
	if len(selected) > 0 {
		return selected
	}
	return all
}

// printed reports err and wraps it so main does not print it again.
func printed(msg string, err error) error {
	cmdutil.PrintError(msg, err)
	return &oerrors.ExitError{Err: err, Code: oerrors.ExitCodeFromError(err), Printed: true}
}
