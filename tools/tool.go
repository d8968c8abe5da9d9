package tools

import (
	"context"

	"github.com/synto-ai/synto/schema"
)

// Category classifies a tool; wallet-category tools always require an
// explicit user confirmation before execution.
type Category string

const (
	CategoryWallet  Category = "wallet"
	CategoryData    Category = "data"
	CategorySocial  Category = "social"
	CategoryUtility Category = "utility"
)

// Env carries the ambient user context a handler may depend on.
type Env struct {
	// WalletAddress is the connected wallet, empty when none is connected.
	WalletAddress string
}

// Handler executes one tool with decoded arguments. Handlers report
// domain failures through the returned ToolResult; a returned error is
// converted to a failed result at the dispatch boundary.
type Handler func(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error)

// Tool represents a named capability the model can invoke.
type Tool interface {
	// Name returns the tool's canonical (lowercase) name.
	Name() string

	// Description returns what the tool does.
	Description() string

	// Category returns the tool's category.
	Category() Category

	// Schema returns the declared parameter schema.
	Schema() *Schema

	// Execute runs the tool with given arguments.
	Execute(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error)
}

// BaseTool provides the standard implementation of Tool.
type BaseTool struct {
	name        string
	description string
	category    Category
	schema      *Schema
	handler     Handler
}

// NewTool creates a tool with the given configuration.
func NewTool(name, description string, category Category, s *Schema, handler Handler) Tool {
	return &BaseTool{
		name:        name,
		description: description,
		category:    category,
		schema:      s,
		handler:     handler,
	}
}

func (t *BaseTool) Name() string        { return t.name }
func (t *BaseTool) Description() string { return t.description }
func (t *BaseTool) Category() Category  { return t.category }
func (t *BaseTool) Schema() *Schema     { return t.schema }

// Execute runs the tool's handler.
func (t *BaseTool) Execute(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	if t.handler == nil {
		return nil, schema.NewToolError(t.name, "execute", schema.ErrAwaitingConfirmation)
	}
	return t.handler(ctx, env, args)
}
