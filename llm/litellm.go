package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voocel/litellm"

	"github.com/synto-ai/synto/schema"
)

// Model is the litellm-backed ChatModel.
type Model struct {
	client      *litellm.Client
	provider    string
	model       string
	temperature float64
	maxTokens   int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ModelOption {
	return func(m *Model) { m.temperature = t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) ModelOption {
	return func(m *Model) { m.maxTokens = n }
}

// NewOpenAIModel creates a ChatModel backed by an OpenAI-compatible
// endpoint. A non-empty baseURL points at a self-hosted server.
func NewOpenAIModel(apiKey, model, baseURL string, opts ...ModelOption) (*Model, error) {
	var client *litellm.Client
	if baseURL != "" {
		client = litellm.New(litellm.WithOpenAI(apiKey, baseURL))
	} else {
		client = litellm.New(litellm.WithOpenAI(apiKey))
	}
	return newModel(client, "openai", model, opts...)
}

// NewAnthropicModel creates a ChatModel backed by Anthropic.
func NewAnthropicModel(apiKey, model string, opts ...ModelOption) (*Model, error) {
	return newModel(litellm.New(litellm.WithAnthropic(apiKey)), "anthropic", model, opts...)
}

// NewGeminiModel creates a ChatModel backed by Google Gemini.
func NewGeminiModel(apiKey, model string, opts ...ModelOption) (*Model, error) {
	return newModel(litellm.New(litellm.WithGemini(apiKey)), "gemini", model, opts...)
}

func newModel(client *litellm.Client, provider, model string, opts ...ModelOption) (*Model, error) {
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	m := &Model{
		client:      client,
		provider:    provider,
		model:       model,
		temperature: 0.7,
		maxTokens:   4096,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Generate runs one completion round trip.
func (m *Model) Generate(ctx context.Context, req *Request) (*Response, error) {
	litellmReq := &litellm.Request{
		Model:       m.model,
		Messages:    convertMessages(req.Messages),
		Temperature: litellm.Float64Ptr(m.temperature),
		MaxTokens:   litellm.IntPtr(m.maxTokens),
	}
	if len(req.Tools) > 0 && m.SupportsTools() {
		litellmReq.Tools = convertTools(req.Tools)
	}

	resp, err := m.client.Chat(ctx, litellmReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrModelAPIError, err)
	}

	message := &schema.Message{
		ID:        uuid.New().String(),
		Role:      schema.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now().UTC(),
	}
	for _, tc := range resp.ToolCalls {
		message.ToolCalls = append(message.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: json.RawMessage(tc.Function.Arguments),
		})
	}

	return &Response{
		Message:      message,
		FinishReason: resp.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// SupportsTools reports whether the configured model accepts tool
// definitions.
func (m *Model) SupportsTools() bool {
	return supportsToolCalling(m.model)
}

// Info returns the provider and model names.
func (m *Model) Info() ModelInfo {
	return ModelInfo{Provider: m.provider, Model: m.model}
}

func supportsToolCalling(model string) bool {
	prefixes := []string{"gpt-", "o1", "o3", "claude-", "gemini-", "qwen", "deepseek", "llama"}
	lower := strings.ToLower(model)
	for _, prefix := range prefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func convertMessages(messages []*schema.Message) []litellm.Message {
	out := make([]litellm.Message, 0, len(messages))
	for _, msg := range messages {
		lm := litellm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		for _, tc := range msg.ToolCalls {
			lm.ToolCalls = append(lm.ToolCalls, litellm.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: litellm.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Args),
				},
			})
		}

		if msg.Role == schema.RoleTool {
			if id, ok := msg.GetMetadata(schema.MetadataToolCallID); ok {
				if s, ok := id.(string); ok {
					lm.ToolCallID = s
				}
			}
		}

		out = append(out, lm)
	}
	return out
}

func convertTools(specs []ToolSpec) []litellm.Tool {
	out := make([]litellm.Tool, 0, len(specs))
	for _, spec := range specs {
		out = append(out, litellm.Tool{
			Type: "function",
			Function: litellm.FunctionDef{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return out
}

var _ ChatModel = (*Model)(nil)
