package platform

import (
	"slices"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/manifest"
)

// Instance is a Platform backed by a manifest. Its attributes can change in
// place; each change is announced to subscribers after the new value is
// visible.
type Instance struct {
	id        string
	listeners listener.List[AttributeEvent]

	mu          sync.RWMutex
	displayName string
	version     *semver.Version
	iconName    string
	tools       map[string][]string
}

// NewInstance builds an instance from m.
func NewInstance(m *manifest.PlatformManifest) *Instance {
	inst := &Instance{id: m.ID}
	inst.displayName = m.DisplayName
	inst.version = parseVersion(m.Version)
	inst.iconName = m.Icon
	inst.tools = toolsFrom(m)
	return inst
}

func (p *Instance) ID() string { return p.id }

func (p *Instance) DisplayName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.displayName
}

// Version returns the parsed version, or nil when the manifest's version is
// not semver.
func (p *Instance) Version() *semver.Version {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Icon returns the embedded icon named by the manifest, the generic server
// icon when the manifest names none, and nil when the named icon is unknown.
func (p *Instance) Icon() *icon.Image {
	p.mu.RLock()
	name := p.iconName
	p.mu.RUnlock()

	if name == "" {
		name = icon.Server
	}
	img, err := icon.Load(name)
	if err != nil {
		return nil
	}
	return img
}

func (p *Instance) IsToolSupported(tool string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.tools[tool]
	return ok
}

func (p *Instance) ToolClasspathEntries(tool string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.tools[tool])
}

// Tools returns the names of the supported tools, sorted.
func (p *Instance) Tools() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.tools))
	for name := range p.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (p *Instance) Subscribe(fn func(AttributeEvent)) listener.Subscription {
	return p.listeners.Subscribe(fn)
}

// SetDisplayName changes the display name.
func (p *Instance) SetDisplayName(name string) {
	p.mu.Lock()
	old := p.displayName
	p.displayName = name
	p.mu.Unlock()

	if old != name {
		p.listeners.Fire(AttributeEvent{Platform: p, Name: PropDisplayName, Old: old, New: name})
	}
}

// SetToolClasspath replaces a tool's classpath; nil removes the tool.
func (p *Instance) SetToolClasspath(tool string, entries []string) {
	p.mu.Lock()
	old, had := p.tools[tool]
	if entries == nil {
		delete(p.tools, tool)
	} else {
		if p.tools == nil {
			p.tools = make(map[string][]string)
		}
		p.tools[tool] = slices.Clone(entries)
	}
	p.mu.Unlock()

	if had != (entries != nil) || !slices.Equal(old, entries) {
		p.listeners.Fire(AttributeEvent{Platform: p, Name: PropClasspath, Tool: tool, Old: old, New: slices.Clone(entries)})
	}
}

// Update applies m, announcing every attribute that differs. The instance
// identifier never changes.
func (p *Instance) Update(m *manifest.PlatformManifest) {
	p.mu.Lock()
	p.version = parseVersion(m.Version)
	p.iconName = m.Icon
	p.mu.Unlock()

	p.SetDisplayName(m.DisplayName)

	next := toolsFrom(m)
	for _, tool := range p.Tools() {
		if _, ok := next[tool]; !ok {
			p.SetToolClasspath(tool, nil)
		}
	}
	names := make([]string, 0, len(next))
	for name := range next {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, tool := range names {
		p.SetToolClasspath(tool, next[tool])
	}
}

func toolsFrom(m *manifest.PlatformManifest) map[string][]string {
	tools := make(map[string][]string, len(m.Tools))
	for name, cfg := range m.Tools {
		entries := cfg.Classpath
		if entries == nil {
			entries = []string{}
		}
		tools[name] = slices.Clone(entries)
	}
	return tools
}

func parseVersion(v string) *semver.Version {
	parsed, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil
	}
	return parsed
}
