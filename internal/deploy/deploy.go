// Package deploy drives root components across the hosts of an environment.
//
// Phase sequence:
//  1. PLAN:    every host's roots are instantiated and attached, so hooks
//     published anywhere in the environment are visible to every host.
//  2. DEPLOY:  selected hosts deploy their roots in assignment order,
//     sequentially or concurrently. A failing host stops at its first hard
//     failure; other hosts carry on.
package deploy

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/environment"
	"github.com/opmodel/converge/internal/output"
)

// Plan holds the instantiated component trees of an environment.
type Plan struct {
	// RunID identifies this run in log output.
	RunID string

	// Environment is the runtime environment with all roots attached.
	Environment *component.Environment

	hosts []*hostPlan
}

type hostPlan struct {
	host  *component.Host
	roots []*component.Root
	err   error
}

// PlanOptions configures NewPlan.
type PlanOptions struct {
	// File is the parsed environment file.
	File *environment.File

	// Factories are the loaded definitions.
	Factories []*component.RootFactory

	// Runner overrides the command runner. Nil uses the shell.
	Runner component.Runner

	// Renderer overrides the template renderer. Nil uses text/template.
	Renderer component.Renderer
}

// NewPlan validates the environment against the definitions and
// instantiates every root of every host. An instantiation failure is kept
// on its host and reported when that host is deployed.
func NewPlan(opts PlanOptions) (*Plan, error) {
	if err := opts.File.Check(opts.Factories); err != nil {
		return nil, err
	}

	byName := make(map[string]*component.RootFactory, len(opts.Factories))
	for _, f := range opts.Factories {
		byName[f.Name] = f
	}

	env := opts.File.Build()
	env.Runner = opts.Runner
	env.Renderer = opts.Renderer

	plan := &Plan{RunID: uuid.NewString(), Environment: env}
	for _, host := range env.Hosts() {
		hp := &hostPlan{host: host}
		for _, name := range opts.File.Components(host.Name) {
			root, err := byName[name].Instantiate(env.Service, env, host, opts.File.OverridesFor(name))
			if err != nil {
				hp.err = err
				break
			}
			hp.roots = append(hp.roots, root)
		}
		if hp.err != nil {
			for _, r := range hp.roots {
				host.Detach(r)
			}
			hp.roots = nil
			output.Debug("host preparation failed", "host", host.Name, "err", hp.err)
		}
		plan.hosts = append(plan.hosts, hp)
	}

	output.Debug("plan ready", "run", plan.RunID, "hosts", len(plan.hosts))
	return plan, nil
}

// Hosts returns the planned host names in order.
func (p *Plan) Hosts() []string {
	names := make([]string, 0, len(p.hosts))
	for _, hp := range p.hosts {
		names = append(names, hp.host.Name)
	}
	return names
}

// Roots returns the roots instantiated for host.
func (p *Plan) Roots(host string) []*component.Root {
	for _, hp := range p.hosts {
		if hp.host.Name == host {
			return hp.roots
		}
	}
	return nil
}

// RunOptions configures Run.
type RunOptions struct {
	// Hosts restricts the run to these hosts. Empty means all.
	Hosts []string

	// Parallel deploys hosts concurrently.
	Parallel bool

	// MaxParallel caps concurrent hosts when Parallel is set. Zero means no cap.
	MaxParallel int

	// OnHostDone is called after each host finishes. Calls may be concurrent.
	OnHostDone func(HostResult)
}

// HostResult is the outcome of one host.
type HostResult struct {
	Host     string
	Report   *component.Report
	Err      error
	Duration time.Duration
}

// Result collects the per-host outcomes in host order.
type Result struct {
	RunID string
	Hosts []HostResult
}

// Failed returns the hosts that reported an error.
func (r *Result) Failed() []HostResult {
	var out []HostResult
	for _, h := range r.Hosts {
		if h.Err != nil {
			out = append(out, h)
		}
	}
	return out
}

// Updated returns the number of components updated across all hosts.
func (r *Result) Updated() int {
	n := 0
	for _, h := range r.Hosts {
		if h.Report != nil {
			n += h.Report.Updated()
		}
	}
	return n
}

// Err joins the host failures, or returns nil when every host succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, h := range r.Failed() {
		errs = append(errs, &HostError{HostName: h.Host, Err: h.Err})
	}
	return errors.Join(errs...)
}

// Run deploys the selected hosts.
func (p *Plan) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	selected, err := p.selectHosts(opts.Hosts)
	if err != nil {
		return nil, err
	}

	results := make([]HostResult, len(selected))
	run := func(i int) {
		results[i] = deployHost(ctx, selected[i])
		if opts.OnHostDone != nil {
			opts.OnHostDone(results[i])
		}
	}

	if opts.Parallel {
		var g errgroup.Group
		if opts.MaxParallel > 0 {
			g.SetLimit(opts.MaxParallel)
		}
		for i := range selected {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range selected {
			run(i)
		}
	}

	return &Result{RunID: p.RunID, Hosts: results}, nil
}

func (p *Plan) selectHosts(names []string) ([]*hostPlan, error) {
	if len(names) == 0 {
		return p.hosts, nil
	}
	var out []*hostPlan
	for _, hp := range p.hosts {
		if slices.Contains(names, hp.host.Name) {
			out = append(out, hp)
		}
	}
	for _, name := range names {
		if !slices.Contains(p.Hosts(), name) {
			return nil, &UnknownHostError{Name: name, Available: p.Hosts()}
		}
	}
	return out, nil
}

func deployHost(ctx context.Context, hp *hostPlan) HostResult {
	start := time.Now()
	log := output.HostLogger(hp.host.Name)
	result := HostResult{Host: hp.host.Name, Report: &component.Report{}}

	if hp.err != nil {
		result.Err = hp.err
		result.Duration = time.Since(start)
		return result
	}

	log.Debug("deploying", "roots", len(hp.roots))
	for _, root := range hp.roots {
		report, err := root.Deploy(ctx)
		result.Report.Merge(report)
		if err != nil {
			result.Err = err
			break
		}
	}
	result.Duration = time.Since(start)
	log.Debug("finished", "updated", result.Report.Updated(), "duration", result.Duration.Round(time.Millisecond))
	return result
}
