package component

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// SecretsHook is the hook name secrets publishers use.
const SecretsHook = "secrets"

// Hook is a named payload published by a component.
type Hook struct {
	Name    string
	Payload any
	Owner   Component
}

// Publish makes payload discoverable under name. A later Publish with the
// same name replaces the payload. Publish may be called from any lifecycle
// method, including while other hosts deploy concurrently.
func (b *Base) Publish(name string, payload any) {
	b.hooksMu.Lock()
	defer b.hooksMu.Unlock()
	if b.hooks == nil {
		b.hooks = make(map[string]any)
	}
	b.hooks[name] = payload
}

// Hooks returns a copy of the hooks published by this component.
func (b *Base) Hooks() map[string]any {
	b.hooksMu.RLock()
	defer b.hooksMu.RUnlock()
	return maps.Clone(b.hooks)
}

func (b *Base) hook(name string) (any, bool) {
	b.hooksMu.RLock()
	defer b.hooksMu.RUnlock()
	payload, ok := b.hooks[name]
	return payload, ok
}

// FindHooks yields every hook named name published in the component trees of
// env's hosts. An empty host searches all hosts.
//
// Traversal order: hosts sorted by name, roots in the order they were
// attached to their host, and within a tree pre-order depth-first (a parent
// before its children, children in the order they were added). Only roots
// attached at the time of the call are searched.
func FindHooks(env *Environment, name, host string) iter.Seq[Hook] {
	return func(yield func(Hook) bool) {
		if env == nil {
			return
		}
		for _, h := range env.Hosts() {
			if host != "" && h.Name != host {
				continue
			}
			for _, root := range h.Roots() {
				stack := []Component{root.Component()}
				for len(stack) > 0 {
					cur := stack[len(stack)-1]
					stack = stack[:len(stack)-1]

					b := cur.base()
					if payload, ok := b.hook(name); ok {
						if !yield(Hook{Name: name, Payload: payload, Owner: cur}) {
							return
						}
					}
					for i := len(b.subs) - 1; i >= 0; i-- {
						stack = append(stack, b.subs[i])
					}
				}
			}
		}
	}
}

// FindHooks collects the hooks named name visible from this component's
// environment. See FindHooks for the traversal order.
func (b *Base) FindHooks(name, host string) []Hook {
	return slices.Collect(FindHooks(b.ctx.Environment, name, host))
}

// Secrets returns the payload of the first "secrets" hook in the
// environment. Exactly one component per environment is expected to publish
// secrets; with several publishers the first in traversal order wins.
func (b *Base) Secrets() (any, error) {
	for hook := range FindHooks(b.ctx.Environment, SecretsHook, "") {
		return hook.Payload, nil
	}
	return nil, fmt.Errorf("%w: no component publishes %q", cerrors.ErrNotFound, SecretsHook)
}
