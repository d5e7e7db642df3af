package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/converge/internal/cmdutil"
	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/config"
	"github.com/opmodel/converge/internal/output"
)

type treeOptions struct {
	defs cmdutil.DefinitionFlags
	env  cmdutil.EnvironmentFlags
}

// NewTreeCmd creates the tree command.
func NewTreeCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &treeOptions{}

	c := &cobra.Command{
		Use:   "tree [definitions]",
		Short: "Show the prepared component tree of each host",
		Long: `Prepare every host of an environment without deploying and print the
resulting component trees, including declared children and platform
specializations. Sub-components are listed in deploy order.

Examples:
  converge tree ./site -e envs/production.yaml
  converge tree -e envs/production.yaml --host web01`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runTree(cfg, opts, args)
		},
	}

	opts.defs.AddTo(c)
	opts.env.AddTo(c)

	return c
}

func runTree(cfg *GlobalConfig, opts *treeOptions, args []string) error {
	resolved, err := cfg.Resolve(config.ResolveOptions{
		Environment: opts.env.Environment,
		Definitions: cmdutil.ResolveDefinitionsPath(args, opts.defs.Definitions),
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

	for _, host := range selectedOrAll(opts.env.Hosts, plan.Hosts()) {
		output.Print(output.RenderTree(hostTree(host, plan.Roots(host))))
	}
	return nil
}

func hostTree(host string, roots []*component.Root) *output.TreeNode {
	node := &output.TreeNode{Name: host}
	if len(roots) == 0 {
		node.Annotation = "no roots prepared"
	}
	for _, root := range roots {
		addComponent(node, root.Component(), root.Name())
	}
	return node
}

func addComponent(parent *output.TreeNode, c component.Component, annotation string) {
	b := component.BaseOf(c)
	node := parent.Add(b.Label(), annotation)
	for _, sub := range b.SubComponents() {
		addComponent(node, sub, "")
	}
}
