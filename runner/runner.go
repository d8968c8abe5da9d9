// Package runner drives chat turns: it feeds the transcript to the
// model, dispatches tool calls, routes wallet actions through the
// confirmation flow, and persists every message as it happens.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/synto-ai/synto/llm"
	"github.com/synto-ai/synto/observer"
	"github.com/synto-ai/synto/schema"
	"github.com/synto-ai/synto/session"
	"github.com/synto-ai/synto/tools"
	"github.com/synto-ai/synto/wallet"
)

const (
	defaultMaxTurns      = 8
	defaultHistoryWindow = 50
)

// Config assembles the collaborators for a Runner.
type Config struct {
	Model         llm.ChatModel
	Toolbox       *tools.Toolbox
	Executor      *tools.Executor
	Confirmations *wallet.Manager
	Sessions      session.Repository
	Observer      observer.Observer
	Middlewares   []Middleware
	SystemPrompt  string
	Env           tools.Env

	// MaxTurns bounds model round trips within one Run call.
	MaxTurns int
	// HistoryWindow is the number of trailing transcript messages sent
	// to the model.
	HistoryWindow int
}

// Runner executes chat turns against one session at a time.
type Runner struct {
	config Config
}

// New validates the configuration and builds a Runner.
func New(config Config) (*Runner, error) {
	if config.Model == nil {
		return nil, schema.NewRunnerError("new", errors.New("model is required"))
	}
	if config.Toolbox == nil {
		return nil, schema.NewRunnerError("new", errors.New("toolbox is required"))
	}
	if config.Executor == nil {
		return nil, schema.NewRunnerError("new", errors.New("executor is required"))
	}
	if config.Confirmations == nil {
		return nil, schema.NewRunnerError("new", errors.New("confirmation manager is required"))
	}
	if config.Sessions == nil {
		return nil, schema.NewRunnerError("new", errors.New("session repository is required"))
	}
	if config.Observer == nil {
		config.Observer = observer.Noop{}
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = defaultMaxTurns
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = defaultHistoryWindow
	}
	return &Runner{config: config}, nil
}

// Confirmations exposes the confirmation manager so a frontend can
// submit user decisions while a run is blocked on Await.
func (r *Runner) Confirmations() *wallet.Manager {
	return r.config.Confirmations
}

// Run executes one chat turn and returns the final assistant message.
func (r *Runner) Run(ctx context.Context, sessionID, input string) (*schema.Message, error) {
	return r.run(ctx, sessionID, input, nil)
}

// RunStream executes one chat turn, emitting lifecycle events as they
// happen. The channel closes when the turn finishes.
func (r *Runner) RunStream(ctx context.Context, sessionID, input string) (<-chan schema.StreamEvent, error) {
	events := make(chan schema.StreamEvent, 64)

	go func() {
		defer close(events)
		emit := func(event schema.StreamEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		}

		emit(schema.NewStreamEvent(schema.EventStart, sessionID, nil))
		if _, err := r.run(ctx, sessionID, input, emit); err != nil {
			emit(schema.NewErrorEvent(err, sessionID))
			return
		}
		emit(schema.NewStreamEvent(schema.EventEnd, sessionID, nil))
	}()

	return events, nil
}

func (r *Runner) run(ctx context.Context, sessionID, input string, emit func(schema.StreamEvent)) (*schema.Message, error) {
	if emit == nil {
		emit = func(schema.StreamEvent) {}
	}
	if sessionID == "" {
		return nil, schema.NewRunnerError("run", errors.New("session ID is required"))
	}

	transcript, err := r.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// A turn cannot start while an earlier tool call has no recorded
	// result; the model would see an inconsistent transcript.
	if unresolvedToolCalls(transcript) {
		return nil, schema.NewRunnerError("run", schema.ErrToolInProgress)
	}

	userMsg := &schema.Message{
		ID:        uuid.New().String(),
		Role:      schema.RoleUser,
		Content:   input,
		Timestamp: time.Now().UTC(),
	}
	if err := r.config.Sessions.Append(ctx, sessionID, userMsg); err != nil {
		return nil, schema.NewRunnerError("append user message", err)
	}
	transcript = append(transcript, userMsg)

	specs := r.toolSpecs()

	for turn := 0; turn < r.config.MaxTurns; turn++ {
		r.config.Observer.OnLLMStart(sessionID, r.config.Model.Info().Model)
		resp, err := r.config.Model.Generate(ctx, &llm.Request{
			Messages: r.prompt(transcript),
			Tools:    specs,
		})
		if err != nil {
			r.config.Observer.OnError(sessionID, err)
			return nil, schema.NewRunnerError("generate", err)
		}
		r.config.Observer.OnLLMEnd(sessionID, r.config.Model.Info().Model,
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		assistant := resp.Message
		if err := r.config.Sessions.Append(ctx, sessionID, assistant); err != nil {
			return nil, schema.NewRunnerError("append assistant message", err)
		}
		transcript = append(transcript, assistant)

		if !assistant.HasToolCalls() {
			emit(schema.NewStreamEvent(schema.EventMessage, sessionID, assistant))
			return assistant, nil
		}

		// Tool results are appended in call order so IDs pair up when
		// the transcript is replayed.
		for _, call := range assistant.ToolCalls {
			emit(schema.NewToolCallEvent(call, sessionID))
			r.config.Observer.OnToolCall(sessionID, call.Name, call.ID)

			result, err := r.dispatch(ctx, sessionID, call, emit)
			if err != nil {
				r.config.Observer.OnError(sessionID, err)
				return nil, err
			}

			toolMsg := &schema.Message{
				ID:        uuid.New().String(),
				Role:      schema.RoleTool,
				Content:   result,
				Timestamp: time.Now().UTC(),
			}
			toolMsg.SetMetadata(schema.MetadataToolCallID, call.ID)
			if err := r.config.Sessions.Append(ctx, sessionID, toolMsg); err != nil {
				return nil, schema.NewRunnerError("append tool message", err)
			}
			transcript = append(transcript, toolMsg)

			emit(schema.NewToolResultEvent(call, result, sessionID))
			r.config.Observer.OnToolResult(sessionID, call.Name, call.ID, schema.ParseResult(result).Success)
		}
	}

	return nil, schema.NewRunnerError("run", schema.ErrMaxTurns)
}

// dispatch resolves one tool call to its serialized result. Wallet
// calls block here until the user decides; a cancelled context leaves
// the armed confirmation in place for a later decision.
func (r *Runner) dispatch(ctx context.Context, sessionID string, call schema.ToolCall, emit func(schema.StreamEvent)) (string, error) {
	for _, mw := range r.config.Middlewares {
		if before, ok := mw.(BeforeTool); ok {
			if err := before.BeforeTool(ctx, call, r.config.Env); err != nil {
				return schema.NewErrorResult(err).ToJSON(), nil
			}
		}
	}

	execCtx := ctx
	var cancels []context.CancelFunc
	for _, mw := range r.config.Middlewares {
		if wrapper, ok := mw.(ContextMiddleware); ok {
			var cancel context.CancelFunc
			execCtx, cancel = wrapper.WrapContext(execCtx)
			cancels = append(cancels, cancel)
		}
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	result, err := r.config.Executor.Execute(execCtx, call, r.config.Env)
	if errors.Is(err, schema.ErrAwaitingConfirmation) {
		result, err = r.awaitConfirmation(ctx, sessionID, call, emit)
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", schema.NewRunnerError("execute", err)
	}

	for _, mw := range r.config.Middlewares {
		if after, ok := mw.(AfterTool); ok {
			rewritten, err := after.AfterTool(ctx, call, result)
			if err != nil {
				return schema.NewErrorResult(err).ToJSON(), nil
			}
			result = rewritten
		}
	}
	return result, nil
}

func (r *Runner) awaitConfirmation(ctx context.Context, sessionID string, call schema.ToolCall, emit func(schema.StreamEvent)) (string, error) {
	confirmation, err := r.config.Confirmations.Defer(call, r.config.Env.WalletAddress)
	if err != nil {
		return schema.NewErrorResult(err).ToJSON(), nil
	}

	emit(schema.NewStreamEvent(schema.EventConfirmation, sessionID, confirmation))
	r.config.Observer.OnConfirmation(sessionID, call.Name, call.ID)

	result, err := r.config.Confirmations.Await(ctx, call.ID)
	if errors.Is(err, schema.ErrConfirmationExpired) {
		return schema.NewErrorResultf("Transaction confirmation expired").ToJSON(), nil
	}
	if err != nil {
		// Context cancellation: the confirmation stays armed and can be
		// decided on a later turn.
		return "", schema.NewRunnerError("await confirmation", err)
	}
	return result, nil
}

func (r *Runner) toolSpecs() []llm.ToolSpec {
	enabled := r.config.Toolbox.Tools()
	specs := make([]llm.ToolSpec, 0, len(enabled))
	for _, tool := range enabled {
		specs = append(specs, llm.ToolSpec{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Schema().AsMap(),
		})
	}
	return specs
}

// prompt builds the model-facing message list: system prompt first,
// then the trailing history window.
func (r *Runner) prompt(transcript []*schema.Message) []*schema.Message {
	window := transcript
	if len(window) > r.config.HistoryWindow {
		window = window[len(window)-r.config.HistoryWindow:]
	}

	messages := make([]*schema.Message, 0, len(window)+1)
	if r.config.SystemPrompt != "" {
		messages = append(messages, &schema.Message{
			ID:      "system",
			Role:    schema.RoleSystem,
			Content: r.config.SystemPrompt,
		})
	}
	return append(messages, window...)
}

func (r *Runner) loadSession(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	existing, err := r.config.Sessions.Get(ctx, sessionID)
	if err == nil {
		return existing.Messages, nil
	}
	if !errors.Is(err, schema.ErrSessionNotFound) {
		return nil, schema.NewRunnerError("load session", err)
	}

	fresh := &session.ChatSession{
		ID:        sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.config.Sessions.Save(ctx, fresh); err != nil {
		return nil, schema.NewRunnerError("create session", err)
	}
	return nil, nil
}

// unresolvedToolCalls reports whether any assistant tool call lacks a
// matching tool-role result message.
func unresolvedToolCalls(transcript []*schema.Message) bool {
	pending := make(map[string]struct{})
	for _, msg := range transcript {
		switch msg.Role {
		case schema.RoleAssistant:
			for _, call := range msg.ToolCalls {
				pending[call.ID] = struct{}{}
			}
		case schema.RoleTool:
			if id, ok := msg.GetMetadata(schema.MetadataToolCallID); ok {
				if s, ok := id.(string); ok {
					delete(pending, s)
				}
			}
		}
	}
	return len(pending) > 0
}
