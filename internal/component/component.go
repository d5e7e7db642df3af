// Package component implements the component lifecycle and composition engine.
//
// A Component describes one piece of desired state on a host. Components form
// a tree: Prepare assigns the deployment context and lets Configure attach
// sub-components, and Deploy walks the tree depth-first, children before
// parents, calling Verify and, when Verify reports NeedsUpdate, Update.
//
// Concrete components embed Base, which supplies no-op lifecycle defaults and
// all tree mechanics:
//
//	type Motd struct {
//		component.Base
//		Text string
//	}
//
//	func (m *Motd) Verify(ctx context.Context) (component.Status, error) { ... }
//	func (m *Motd) Update(ctx context.Context) error { ... }
package component

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// Status is the outcome of Verify.
type Status int

const (
	// Current means the deployed state already matches the desired state.
	Current Status = iota

	// NeedsUpdate means the deployed state diverges and Update must run.
	NeedsUpdate
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Current:
		return "current"
	case NeedsUpdate:
		return "needs-update"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Component is a unit of declared desired state.
type Component interface {
	// Configure runs once during Prepare, after the context is assigned.
	// It is the place to attach sub-components with Base.Add.
	Configure() error

	// Verify reports whether the component is already deployed correctly.
	// Any error is a hard failure and aborts the deploy pass.
	Verify(ctx context.Context) (Status, error)

	// Update brings the target into the declared state.
	Update(ctx context.Context) error

	// base returns the embedded tree state. Implemented by embedding Base.
	base() *Base
}

// Context is the deployment context assigned to every component of a tree.
type Context struct {
	Service     *Service
	Environment *Environment
	Host        *Host
	Root        *Root
}

// Base holds the state every component shares. Embed it by value.
type Base struct {
	namevar string
	name    string

	self     Component
	ctx      Context
	parent   Component
	prepared bool

	subs     []Component
	declared []Component

	hooksMu sync.RWMutex
	hooks   map[string]any
}

func (b *Base) base() *Base { return b }

// BaseOf returns the tree state embedded in c.
func BaseOf(c Component) *Base { return c.base() }

// Configure is a no-op by default.
func (b *Base) Configure() error { return nil }

// Verify reports Current by default.
func (b *Base) Verify(context.Context) (Status, error) { return Current, nil }

// Update is a no-op by default.
func (b *Base) Update(context.Context) error { return nil }

// SetNamevar records the identifying attribute of the component. The value
// must be non-empty.
func (b *Base) SetNamevar(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return cerrors.NewConfigurationError(
			fmt.Sprintf("namevar %q requires a value", key), "", key, "")
	}
	b.namevar = key
	b.name = value
	return nil
}

// Namevar returns the name of the identifying attribute, or "".
func (b *Base) Namevar() string { return b.namevar }

// Name returns the namevar value, or "".
func (b *Base) Name() string { return b.name }

// Service returns the service the component is deployed for.
func (b *Base) Service() *Service { return b.ctx.Service }

// Environment returns the environment the component is deployed in.
func (b *Base) Environment() *Environment { return b.ctx.Environment }

// Host returns the host the component is deployed to.
func (b *Base) Host() *Host { return b.ctx.Host }

// Root returns the root component wrapper owning the tree.
func (b *Base) Root() *Root { return b.ctx.Root }

// Parent returns the parent component, or nil for a top-level component.
func (b *Base) Parent() Component { return b.parent }

// Prepared reports whether Prepare has completed its context assignment.
func (b *Base) Prepared() bool { return b.prepared }

// SubComponents returns the sub-components in deploy order.
func (b *Base) SubComponents() []Component {
	out := make([]Component, len(b.subs))
	copy(out, b.subs)
	return out
}

// Add appends c as a sub-component and prepares it with the same context and
// b's component as parent. A nil component is ignored.
func (b *Base) Add(c Component) error {
	if isNil(c) {
		return nil
	}
	if !b.prepared {
		return fmt.Errorf("%w: cannot add %s to unprepared component %s",
			cerrors.ErrConfiguration, breadcrumb(c), b.Breadcrumbs())
	}
	b.subs = append(b.subs, c)
	return Prepare(c, b.ctx, b.self)
}

// Declare queues c to be added right after Configure runs. Factories use it
// to attach children listed in definition files before the tree is prepared.
func (b *Base) Declare(c Component) {
	if isNil(c) {
		return
	}
	b.declared = append(b.declared, c)
}

// Breadcrumbs returns the path from the top-level component, e.g.
// "App > File(/etc/app.conf)".
func (b *Base) Breadcrumbs() string {
	var parts []string
	var cur Component = b.self
	if cur == nil {
		return b.breadcrumb()
	}
	for cur != nil {
		parts = append(parts, cur.base().breadcrumb())
		cur = cur.base().parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// Label returns the component's own breadcrumb segment, e.g. "File(/etc/motd)".
func (b *Base) Label() string { return b.breadcrumb() }

func (b *Base) breadcrumb() string {
	result := typeName(b.self)
	if b.name != "" {
		result += "(" + b.name + ")"
	}
	return result
}

// Prepare assigns the deployment context to c, runs Configure, attaches
// declared children and finally the platform specialization registered for
// c's exact type and the environment's platform, if any.
//
// Prepare runs once per component; a second call fails with
// ErrAlreadyPrepared.
func Prepare(c Component, pctx Context, parent Component) error {
	b := c.base()
	b.self = c
	if b.prepared {
		return fmt.Errorf("%s: %w", b.Breadcrumbs(), cerrors.ErrAlreadyPrepared)
	}
	b.ctx = pctx
	b.parent = parent
	b.prepared = true

	if err := c.Configure(); err != nil {
		return fmt.Errorf("configure %s: %w", b.Breadcrumbs(), err)
	}

	declared := b.declared
	b.declared = nil
	for _, d := range declared {
		if err := b.Add(d); err != nil {
			return err
		}
	}

	platform := ""
	if pctx.Environment != nil {
		platform = pctx.Environment.Platform
	}
	spec, err := platformFor(c, platform)
	if err != nil {
		return err
	}
	return b.Add(spec)
}

func breadcrumb(c Component) string {
	b := c.base()
	if b.self == nil {
		b.self = c
	}
	return b.breadcrumb()
}

func typeName(c Component) string {
	if c == nil {
		return "Component"
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func isNil(c Component) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
