package runner

import (
	"context"
	"time"

	"github.com/synto-ai/synto/schema"
	"github.com/synto-ai/synto/tools"
)

// Middleware is the marker interface for turn middlewares. A middleware
// participates only through the optional interfaces it implements.
type Middleware interface {
	Name() string
}

// BeforeTool runs before a tool call is dispatched; a returned error
// vetoes the call and becomes its failed result.
type BeforeTool interface {
	Middleware
	BeforeTool(ctx context.Context, call schema.ToolCall, env tools.Env) error
}

// AfterTool runs after a tool produced its serialized result and may
// rewrite it.
type AfterTool interface {
	Middleware
	AfterTool(ctx context.Context, call schema.ToolCall, result string) (string, error)
}

// ContextMiddleware wraps the context a tool call executes under.
type ContextMiddleware interface {
	Middleware
	WrapContext(ctx context.Context) (context.Context, context.CancelFunc)
}

// TimeoutMiddleware bounds each non-wallet tool call's execution time.
type TimeoutMiddleware struct {
	timeout time.Duration
}

// NewTimeoutMiddleware creates a per-call timeout middleware.
func NewTimeoutMiddleware(timeout time.Duration) *TimeoutMiddleware {
	return &TimeoutMiddleware{timeout: timeout}
}

func (m *TimeoutMiddleware) Name() string { return "timeout" }

func (m *TimeoutMiddleware) WrapContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// AllowlistMiddleware vetoes calls to tools outside its allowlist.
// An empty allowlist permits everything.
type AllowlistMiddleware struct {
	allowed map[string]struct{}
}

// NewAllowlistMiddleware creates an allowlist middleware.
func NewAllowlistMiddleware(names ...string) *AllowlistMiddleware {
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}
	return &AllowlistMiddleware{allowed: allowed}
}

func (m *AllowlistMiddleware) Name() string { return "allowlist" }

func (m *AllowlistMiddleware) BeforeTool(ctx context.Context, call schema.ToolCall, env tools.Env) error {
	if len(m.allowed) == 0 {
		return nil
	}
	if _, ok := m.allowed[call.Name]; !ok {
		return schema.NewToolError(call.Name, "allowlist", schema.ErrToolDisabled)
	}
	return nil
}

var (
	_ ContextMiddleware = (*TimeoutMiddleware)(nil)
	_ BeforeTool        = (*AllowlistMiddleware)(nil)
)
