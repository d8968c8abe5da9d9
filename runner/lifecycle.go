package runner

import (
	"fmt"

	"github.com/synto-ai/synto/schema"
	"github.com/synto-ai/synto/tools"
)

// ToolStatus is the display status of a tool invocation.
type ToolStatus string

const (
	StatusPreparing ToolStatus = "preparing"
	StatusAwaiting  ToolStatus = "awaiting_confirmation"
	StatusRunning   ToolStatus = "running"
	StatusSuccess   ToolStatus = "success"
	StatusError     ToolStatus = "error"
)

// ToolView is the render-ready projection of one tool invocation.
type ToolView struct {
	CallID   string             `json:"toolCallId"`
	Name     string             `json:"toolName"`
	Category tools.Category     `json:"category"`
	Status   ToolStatus         `json:"status"`
	Label    string             `json:"label"`
	Result   *schema.ToolResult `json:"result,omitempty"`
}

// Renderer classifies tool invocations for display. It shares the
// executor's registry, so a tool renders under the same category it
// dispatched under.
type Renderer struct {
	registry *tools.Registry
}

// NewRenderer creates a renderer over the shared registry.
func NewRenderer(registry *tools.Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render projects an invocation into its display view. Every
// invocation state yields a view; there is no unrenderable input.
func (r *Renderer) Render(inv schema.ToolInvocation) ToolView {
	view := ToolView{
		CallID:   inv.CallID,
		Name:     inv.Name,
		Category: r.registry.Category(inv.Name),
	}

	switch inv.State {
	case schema.StatePartialCall:
		view.Status = StatusPreparing
		view.Label = fmt.Sprintf("Preparing %s...", inv.Name)

	case schema.StateCall:
		if r.registry.IsWalletTool(inv.Name) {
			view.Status = StatusAwaiting
			view.Label = fmt.Sprintf("Waiting for confirmation of %s", inv.Name)
		} else {
			view.Status = StatusRunning
			view.Label = fmt.Sprintf("Running %s...", inv.Name)
		}

	case schema.StateResult:
		result := schema.ParseResult(inv.Result)
		view.Result = result
		if result.Success {
			view.Status = StatusSuccess
			view.Label = result.Message
			if view.Label == "" {
				view.Label = fmt.Sprintf("%s completed", inv.Name)
			}
		} else {
			view.Status = StatusError
			view.Label = result.Error
			if view.Label == "" {
				view.Label = fmt.Sprintf("%s failed", inv.Name)
			}
		}

	default:
		view.Status = StatusPreparing
		view.Label = inv.Name
	}

	return view
}
