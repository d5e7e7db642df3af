package component

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// Phase names the lifecycle step that failed.
type Phase string

const (
	PhaseVerify Phase = "verify"
	PhaseUpdate Phase = "update"
)

// DeployError reports a hard failure of one component during a deploy pass.
type DeployError struct {
	// Path is the breadcrumb path of the failing component.
	Path string

	// Phase is the lifecycle step that failed.
	Phase Phase

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *DeployError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap exposes both ErrDeploy and the underlying failure to errors.Is/As.
func (e *DeployError) Unwrap() []error {
	return []error{cerrors.ErrDeploy, e.Err}
}

// Entry records the outcome for one component of a deploy pass.
type Entry struct {
	Path    string `json:"path" yaml:"path"`
	Updated bool   `json:"updated" yaml:"updated"`
}

// Report lists the components visited by a deploy pass in visit order.
type Report struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Updated returns the number of components that ran Update.
func (r *Report) Updated() int {
	n := 0
	for _, e := range r.Entries {
		if e.Updated {
			n++
		}
	}
	return n
}

// Merge appends the entries of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Entries = append(r.Entries, other.Entries...)
}

// Deploy converges c and its sub-components.
//
// Sub-components deploy first, in the order they were added, so every
// descendant settles before its ancestor is verified. For each node Verify
// runs; on NeedsUpdate, Update runs exactly once with no re-verification.
// The first Verify or Update error aborts the pass and is returned as a
// *DeployError. The report covers every component settled before the failure.
func Deploy(ctx context.Context, c Component) (*Report, error) {
	report := &Report{}
	err := deploy(ctx, c, report)
	return report, err
}

func deploy(ctx context.Context, c Component, report *Report) error {
	b := c.base()
	if b.self == nil {
		b.self = c
	}
	for _, sub := range b.subs {
		if err := deploy(ctx, sub, report); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := b.Breadcrumbs()
	status, err := c.Verify(ctx)
	if err != nil {
		return &DeployError{Path: path, Phase: PhaseVerify, Err: err}
	}

	entry := Entry{Path: path}
	if status == NeedsUpdate {
		output.Debug("updating", "component", path)
		if err := c.Update(ctx); err != nil {
			return &DeployError{Path: path, Phase: PhaseUpdate, Err: err}
		}
		entry.Updated = true
	}
	report.Entries = append(report.Entries, entry)
	return nil
}

// IsDeployError reports whether err is a verify or update failure.
func IsDeployError(err error) bool {
	var de *DeployError
	return errors.As(err, &de)
}
