package schema

import (
	"errors"
	"fmt"
)

var (
	// Tool-related errors
	ErrToolNotFound      = errors.New("tool not found")
	ErrToolAlreadyExists = errors.New("tool already exists")
	ErrToolDisabled      = errors.New("tool is not enabled")

	// ErrAwaitingConfirmation is the defer sentinel: the executor never
	// runs a wallet-category tool itself, it hands the call to the
	// confirmation flow.
	ErrAwaitingConfirmation = errors.New("tool call awaiting wallet confirmation")

	// Wallet precondition errors
	ErrWalletRequired = errors.New("wallet connection required")

	// Contact errors
	ErrContactNotFound = errors.New("contact not found")
	ErrContactExists   = errors.New("a contact with this name already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrToolInProgress  = errors.New("a tool call is still in progress")

	// Confirmation errors
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrConfirmationResolved = errors.New("confirmation already resolved")
	ErrConfirmationExpired  = errors.New("confirmation expired")

	// Model-related errors
	ErrModelAPIError = errors.New("model API error")
	ErrMaxTurns      = errors.New("maximum turns reached without a final answer")
)

// ToolError wraps a failure attributable to one tool.
type ToolError struct {
	ToolName string
	Op       string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s: %v", e.ToolName, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(toolName, op string, err error) *ToolError {
	return &ToolError{
		ToolName: toolName,
		Op:       op,
		Err:      err,
	}
}

// ValidationError reports a malformed tool argument, rejected before
// dispatch.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// RunnerError describes runtime failures in the chat runner.
type RunnerError struct {
	Op  string
	Err error
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("runner: %s: %v", e.Op, e.Err)
}

func (e *RunnerError) Unwrap() error {
	return e.Err
}

func NewRunnerError(op string, err error) *RunnerError {
	return &RunnerError{Op: op, Err: err}
}
