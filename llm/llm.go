// Package llm abstracts the chat model behind a provider-neutral
// interface. The runner depends only on ChatModel; provider wiring
// lives in the litellm-backed implementation.
package llm

import (
	"context"

	"github.com/synto-ai/synto/schema"
)

// ToolSpec advertises one callable tool to the model.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Request is one completion request.
type Request struct {
	Messages []*schema.Message
	Tools    []ToolSpec
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one completion: an assistant message that may carry tool
// calls instead of (or alongside) text content.
type Response struct {
	Message      *schema.Message
	FinishReason string
	Usage        Usage
}

// ModelInfo describes the configured model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ChatModel generates assistant turns.
type ChatModel interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	SupportsTools() bool
	Info() ModelInfo
}
