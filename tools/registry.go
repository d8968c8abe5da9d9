package tools

import (
	"sort"
	"strings"
	"sync"

	"github.com/synto-ai/synto/schema"
)

// Registry is the single source of truth for tool names, schemas and
// categories. Lookups are case-insensitive; names are stored lowercase.
// The executor and the result renderer must share one registry so their
// classifications cannot drift apart.
type Registry struct {
	mutex sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Registering a name twice is an error: divergent
// duplicate definitions are a bug to surface, not a feature to keep.
func (r *Registry) Register(tool Tool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := strings.ToLower(tool.Name())
	if name == "" {
		return schema.NewValidationError("tool.name", name, "tool name cannot be empty")
	}

	if _, exists := r.tools[name]; exists {
		return schema.NewToolError(name, "register", schema.ErrToolAlreadyExists)
	}

	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name, case-insensitively.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, exists := r.tools[strings.ToLower(name)]
	return tool, exists
}

// Has reports whether a tool exists.
func (r *Registry) Has(name string) bool {
	_, exists := r.Get(name)
	return exists
}

// Category returns the category for a tool name. Total and
// deterministic: unregistered names classify as utility.
func (r *Registry) Category(name string) Category {
	tool, exists := r.Get(name)
	if !exists {
		return CategoryUtility
	}
	return tool.Category()
}

// IsWalletTool reports whether the named tool requires the wallet
// confirmation flow.
func (r *Registry) IsWalletTool(name string) bool {
	return r.Category(name) == CategoryWallet
}

// List returns all tools.
func (r *Registry) List() []Tool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Names returns registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of tools.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.tools)
}
