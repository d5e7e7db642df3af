package component

import (
	"slices"
	"sort"
	"sync"
)

// Service is the deployed service. Base is the directory under which each
// root component gets its own work directory.
type Service struct {
	Name string `json:"name" yaml:"name"`
	Base string `json:"base" yaml:"base"`
}

// Host is a deployment target. It holds the root components attached to it.
type Host struct {
	Name string

	mu    sync.Mutex
	roots []*Root
}

// Attach adds r to the host's roots.
func (h *Host) Attach(r *Root) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots = append(h.roots, r)
}

// Detach removes r from the host's roots.
func (h *Host) Detach(r *Root) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots = slices.DeleteFunc(h.roots, func(x *Root) bool { return x == r })
}

// Roots returns the attached roots in attachment order.
func (h *Host) Roots() []*Root {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.roots)
}

// Environment groups the hosts of one deployment target together with the
// collaborators used by components.
type Environment struct {
	Name     string
	Platform string
	Service  *Service

	// Runner executes shell commands for Base.Cmd. Nil means ShellRunner.
	Runner Runner

	// Renderer expands templates for Base.Expand and Base.Template. Nil means TextRenderer.
	Renderer Renderer

	mu    sync.Mutex
	hosts map[string]*Host
}

// NewEnvironment creates an environment without hosts.
func NewEnvironment(name, platform string, service *Service) *Environment {
	return &Environment{
		Name:     name,
		Platform: platform,
		Service:  service,
		hosts:    make(map[string]*Host),
	}
}

// AddHost returns the host called name, creating it if needed.
func (e *Environment) AddHost(name string) *Host {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hosts == nil {
		e.hosts = make(map[string]*Host)
	}
	if h, ok := e.hosts[name]; ok {
		return h
	}
	h := &Host{Name: name}
	e.hosts[name] = h
	return h
}

// Host returns the host called name.
func (e *Environment) Host(name string) (*Host, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.hosts[name]
	return h, ok
}

// Hosts returns all hosts sorted by name.
func (e *Environment) Hosts() []*Host {
	e.mu.Lock()
	defer e.mu.Unlock()
	hosts := make([]*Host, 0, len(e.hosts))
	for _, h := range e.hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name < hosts[j].Name })
	return hosts
}

func (e *Environment) runner() Runner {
	if e == nil || e.Runner == nil {
		return ShellRunner{}
	}
	return e.Runner
}

func (e *Environment) renderer() Renderer {
	if e == nil || e.Renderer == nil {
		return TextRenderer{}
	}
	return e.Renderer
}
