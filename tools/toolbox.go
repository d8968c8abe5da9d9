package tools

import (
	"strings"
	"sync"
)

// Toolbox is the session-scoped view over a registry: only enabled
// tools are exposed to the model. Enabling is driven by the tools the
// user owns (marketplace NFT gating); classification still answers for
// every name through the underlying registry.
type Toolbox struct {
	registry *Registry

	mutex   sync.RWMutex
	enabled map[string]struct{}
}

// NewToolbox creates a toolbox with every registered tool enabled.
func NewToolbox(registry *Registry) *Toolbox {
	enabled := make(map[string]struct{})
	for _, name := range registry.Names() {
		enabled[name] = struct{}{}
	}
	return &Toolbox{
		registry: registry,
		enabled:  enabled,
	}
}

// NewEmptyToolbox creates a toolbox with no tools enabled.
func NewEmptyToolbox(registry *Registry) *Toolbox {
	return &Toolbox{
		registry: registry,
		enabled:  make(map[string]struct{}),
	}
}

// Registry returns the underlying registry.
func (b *Toolbox) Registry() *Registry {
	return b.registry
}

// Enable exposes a tool to the model. Unknown names are ignored so a
// marketplace asset naming a tool this build lacks cannot poison the set.
func (b *Toolbox) Enable(names ...string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, name := range names {
		name = strings.ToLower(name)
		if b.registry.Has(name) {
			b.enabled[name] = struct{}{}
		}
	}
}

// Disable hides a tool from the model.
func (b *Toolbox) Disable(names ...string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, name := range names {
		delete(b.enabled, strings.ToLower(name))
	}
}

// Enabled reports whether the named tool is exposed.
func (b *Toolbox) Enabled(name string) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	_, ok := b.enabled[strings.ToLower(name)]
	return ok
}

// Tools returns the enabled tools.
func (b *Toolbox) Tools() []Tool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	tools := make([]Tool, 0, len(b.enabled))
	for name := range b.enabled {
		if tool, ok := b.registry.Get(name); ok {
			tools = append(tools, tool)
		}
	}
	return tools
}
