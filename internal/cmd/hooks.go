package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/cmdutil"
	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/config"
	"github.com/opmodel/converge/internal/deploy"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

type hooksOptions struct {
	defs   cmdutil.DefinitionFlags
	env    cmdutil.EnvironmentFlags
	format string
	reveal bool
}

// hookSummary describes one discovered hook in structured output.
type hookSummary struct {
	Name    string `json:"name" yaml:"name"`
	Host    string `json:"host" yaml:"host"`
	Owner   string `json:"owner" yaml:"owner"`
	Payload any    `json:"payload" yaml:"payload"`
}

// NewHooksCmd creates the hooks command.
func NewHooksCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &hooksOptions{}

	c := &cobra.Command{
		Use:   "hooks <name> [definitions]",
		Short: "Show the hooks components publish",
		Long: `Prepare every host of an environment and list the hooks published under
<name>, in discovery order: hosts by name, roots in assignment order, and
each component before its sub-components.

Payloads of the "secrets" hook are redacted unless --reveal is given.

Examples:
  converge hooks secrets ./site -e envs/staging.yaml
  converge hooks endpoints -e envs/staging.yaml --host web01 -o json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			return runHooks(cfg, opts, args)
		},
	}

	opts.defs.AddTo(c)
	opts.env.AddTo(c)
	c.Flags().StringVarP(&opts.format, "output", "o", "table",
		fmt.Sprintf("Output format: %s", strings.Join(output.ValidFormats(), ", ")))
	c.Flags().BoolVar(&opts.reveal, "reveal", false, "Show secrets payloads")

	return c
}

func runHooks(cfg *GlobalConfig, opts *hooksOptions, args []string) error {
	format, ok := output.ParseFormat(opts.format)
	if !ok {
		return invalidFormat(opts.format)
	}
	name := args[0]

	resolved, err := cfg.Resolve(config.ResolveOptions{
		Environment: opts.env.Environment,
		Definitions: cmdutil.ResolveDefinitionsPath(args[1:], opts.defs.Definitions),
	})
	if err != nil {
		return printed("resolving configuration", err)
	}

	plan, err := cmdutil.LoadPlan(cmdutil.PlanOptions{
		Definitions: resolved.Definitions,
		Environment: resolved.Environment,
	})
	if err != nil {
		return printed("preparing environment", err)
	}
	if err := checkHosts(opts.env.Hosts, plan.Hosts()); err != nil {
		return printed("selecting hosts", err)
	}

	var summaries []hookSummary
	for _, host := range selectedOrAll(opts.env.Hosts, plan.Hosts()) {
		for hook := range component.FindHooks(plan.Environment, name, host) {
			owner := component.BaseOf(hook.Owner)
			payload := hook.Payload
			if name == component.SecretsHook && !opts.reveal {
				payload = redact(payload)
			}
			summaries = append(summaries, hookSummary{
				Name:    hook.Name,
				Host:    owner.Host().Name,
				Owner:   owner.Breadcrumbs(),
				Payload: payload,
			})
		}
	}

	if format != output.FormatTable {
		if summaries == nil {
			summaries = []hookSummary{}
		}
		return output.Encode(os.Stdout, format, summaries)
	}
	if len(summaries) == 0 {
		output.Println(fmt.Sprintf("No %q hooks published", name))
		return nil
	}
	tbl := output.NewTable("HOST", "OWNER", "PAYLOAD")
	for _, s := range summaries {
		tbl.Row(s.Host, s.Owner, fmt.Sprint(s.Payload))
	}
	output.Println(tbl.String())
	return nil
}

// redact replaces the values of a secrets map with a placeholder.
func redact(payload any) any {
	values, ok := payload.(map[string]string)
	if !ok {
		return "<redacted>"
	}
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = "<redacted>"
	}
	return out
}

func checkHosts(selected, available []string) error {
	for _, name := range selected {
		if !slices.Contains(available, name) {
			return &deploy.UnknownHostError{Name: name, Available: available}
		}
	}
	return nil
}

func invalidFormat(format string) error {
	err := oerrors.NewValidationError(
		fmt.Sprintf("invalid output format %q", format), "", "output",
		"Valid formats: "+strings.Join(output.ValidFormats(), ", "))
	return printed("invalid flag", err)
}
