package schema

import (
	"encoding/json"
	"strings"
)

// ToolResult is the outcome of one tool invocation. Error is set iff
// Success is false; TxHash is set only for wallet-tool successes.
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	TxHash  string      `json:"txHash,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewSuccessResult creates a successful tool result.
func NewSuccessResult(data interface{}, message string) *ToolResult {
	return &ToolResult{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewErrorResult creates a failed tool result.
func NewErrorResult(err error) *ToolResult {
	return &ToolResult{
		Success: false,
		Error:   err.Error(),
	}
}

// NewErrorResultf creates a failed tool result from a plain message.
func NewErrorResultf(msg string) *ToolResult {
	return &ToolResult{
		Success: false,
		Error:   msg,
	}
}

// ToJSON serializes the result for the model-facing boundary. The model
// only ever sees structured text, never an exception.
func (r *ToolResult) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}

// ParseResult decodes a stored result string back into a ToolResult.
// Tolerant of non-JSON payloads: a plain string becomes the Data field
// and success is inferred from an error/fail keyword scan, matching how
// results from arbitrary tools are classified for rendering.
func ParseResult(raw string) *ToolResult {
	var result ToolResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil {
		return &result
	}

	lowered := strings.ToLower(raw)
	failed := strings.Contains(lowered, "error") || strings.Contains(lowered, "fail")
	parsed := &ToolResult{
		Success: !failed,
		Data:    raw,
	}
	if failed {
		parsed.Error = raw
	}
	return parsed
}
