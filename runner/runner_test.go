package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/synto-ai/synto/chain"
	"github.com/synto-ai/synto/contacts"
	"github.com/synto-ai/synto/llm"
	"github.com/synto-ai/synto/schema"
	"github.com/synto-ai/synto/session"
	"github.com/synto-ai/synto/tools"
	"github.com/synto-ai/synto/wallet"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

// scriptedModel returns canned responses in order.
type scriptedModel struct {
	responses []*llm.Response
	requests  []*llm.Request
}

func (m *scriptedModel) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *scriptedModel) SupportsTools() bool { return true }
func (m *scriptedModel) Info() llm.ModelInfo { return llm.ModelInfo{Provider: "test", Model: "scripted"} }

func textResponse(content string) *llm.Response {
	return &llm.Response{
		Message: &schema.Message{
			ID:        "a-" + content,
			Role:      schema.RoleAssistant,
			Content:   content,
			Timestamp: time.Now().UTC(),
		},
		FinishReason: "stop",
	}
}

func toolCallResponse(id, name, args string) *llm.Response {
	return &llm.Response{
		Message: &schema.Message{
			ID:   "a-" + id,
			Role: schema.RoleAssistant,
			ToolCalls: []schema.ToolCall{
				{ID: id, Name: name, Args: []byte(args)},
			},
			Timestamp: time.Now().UTC(),
		},
		FinishReason: "tool_calls",
	}
}

func newTestRunner(t *testing.T, model llm.ChatModel) (*Runner, session.Repository) {
	t.Helper()
	balancer := chain.NewMockBalancer()
	balancer.SetBalance(testWallet, chain.NativeSymbol, 10)

	catalog := &tools.Catalog{
		Contacts: contacts.NewMemoryStore(),
		Balances: balancer,
		Prices:   chain.NewMockPriceSource(),
		Profiles: tools.MockProfileFetcher{},
	}
	registry, err := tools.NewDefaultRegistry(catalog)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	sessions := session.NewMemoryRepository()
	r, err := New(Config{
		Model:         model,
		Toolbox:       tools.NewToolbox(registry),
		Executor:      tools.NewExecutor(registry),
		Confirmations: wallet.NewManager(chain.NewMockQuoter(), chain.NewMockSubmitter()),
		Sessions:      sessions,
		Env:           tools.Env{WalletAddress: testWallet},
	})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	return r, sessions
}

func TestRunPlainAnswer(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{textResponse("hello!")}}
	r, sessions := newTestRunner(t, model)

	msg, err := r.Run(context.Background(), "s1", "hi")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if msg.Content != "hello!" {
		t.Errorf("unexpected answer: %q", msg.Content)
	}

	saved, err := sessions.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if len(saved.Messages) != 2 {
		t.Fatalf("expected user+assistant, got %d messages", len(saved.Messages))
	}
	if saved.Messages[0].Role != schema.RoleUser || saved.Messages[1].Role != schema.RoleAssistant {
		t.Error("unexpected transcript roles")
	}
}

func TestRunSystemPromptAndToolSpecs(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{textResponse("ok")}}
	r, _ := newTestRunner(t, model)
	r.config.SystemPrompt = "you are a wallet assistant"

	if _, err := r.Run(context.Background(), "s1", "hi"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	req := model.requests[0]
	if req.Messages[0].Role != schema.RoleSystem {
		t.Error("system prompt should lead the prompt")
	}
	if len(req.Tools) == 0 {
		t.Fatal("enabled tools should be advertised")
	}
	names := make(map[string]bool)
	for _, spec := range req.Tools {
		names[spec.Name] = true
		if spec.Parameters["type"] != "object" {
			t.Errorf("tool %s: expected object schema", spec.Name)
		}
	}
	if !names["send"] || !names["getWeather"] {
		t.Errorf("canonical tools missing from specs: %v", names)
	}
}

func TestRunToolCallTurn(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse("c1", "getWeather", `{"city":"Lisbon"}`),
		textResponse("it is sunny"),
	}}
	r, sessions := newTestRunner(t, model)

	msg, err := r.Run(context.Background(), "s1", "weather?")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if msg.Content != "it is sunny" {
		t.Errorf("unexpected final answer: %q", msg.Content)
	}

	saved, _ := sessions.Get(context.Background(), "s1")
	// user, assistant(tool call), tool, assistant(answer)
	if len(saved.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(saved.Messages))
	}
	toolMsg := saved.Messages[2]
	if toolMsg.Role != schema.RoleTool {
		t.Fatalf("expected tool message, got %s", toolMsg.Role)
	}
	if id, _ := toolMsg.GetMetadata(schema.MetadataToolCallID); id != "c1" {
		t.Errorf("tool message not linked to call: %v", id)
	}
	if !schema.ParseResult(toolMsg.Content).Success {
		t.Errorf("expected success result, got %s", toolMsg.Content)
	}

	// The second model call must see the tool result.
	second := model.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != schema.RoleTool {
		t.Errorf("tool result missing from follow-up prompt, last role %s", last.Role)
	}
}

func TestRunBlocksOnUnresolvedToolCall(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{textResponse("never reached")}}
	r, sessions := newTestRunner(t, model)

	ctx := context.Background()
	s := &session.ChatSession{ID: "s1", CreatedAt: time.Now().UTC()}
	assistant := &schema.Message{
		ID:   "m1",
		Role: schema.RoleAssistant,
		ToolCalls: []schema.ToolCall{
			{ID: "dangling", Name: "swap", Args: []byte(`{}`)},
		},
	}
	s.Messages = []*schema.Message{assistant}
	if err := sessions.Save(ctx, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := r.Run(ctx, "s1", "continue"); !errors.Is(err, schema.ErrToolInProgress) {
		t.Fatalf("expected ErrToolInProgress, got %v", err)
	}
}

func TestRunWalletConfirmFlow(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse("c1", "send", `{"to":"7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr","amount":1.5}`),
		textResponse("sent!"),
	}}
	r, sessions := newTestRunner(t, model)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "s1", "send 1.5 SOL")
		done <- err
	}()

	// Wait for the confirmation to arm, then approve it.
	deadline := time.After(2 * time.Second)
	for len(r.Confirmations().Pending()) == 0 {
		select {
		case <-deadline:
			t.Fatal("confirmation never armed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	pending := r.Confirmations().Pending()
	if _, err := r.Confirmations().Confirm(context.Background(), pending[0].ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("run failed: %v", err)
	}

	saved, _ := sessions.Get(context.Background(), "s1")
	toolMsg := saved.Messages[2]
	result := schema.ParseResult(toolMsg.Content)
	if !result.Success {
		t.Fatalf("expected success, got %s", toolMsg.Content)
	}
	if result.TxHash == "" {
		t.Error("expected transaction hash in result")
	}
	if !strings.Contains(result.Message, "Sent 1.5 SOL to") {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestRunWalletRejectFlow(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse("c1", "send", `{"to":"7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr","amount":1.5}`),
		textResponse("cancelled, nothing was sent"),
	}}
	r, sessions := newTestRunner(t, model)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), "s1", "send 1.5 SOL")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for len(r.Confirmations().Pending()) == 0 {
		select {
		case <-deadline:
			t.Fatal("confirmation never armed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	pending := r.Confirmations().Pending()
	if _, err := r.Confirmations().Reject(pending[0].ID); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("run failed: %v", err)
	}

	saved, _ := sessions.Get(context.Background(), "s1")
	result := schema.ParseResult(saved.Messages[2].Content)
	if result.Success {
		t.Fatal("rejected action must record a failure")
	}
	if result.Error != "Transaction cancelled by user" {
		t.Errorf("unexpected cancellation text: %q", result.Error)
	}
}

func TestRunStreamEventOrder(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse("c1", "getWeather", `{"city":"Lisbon"}`),
		textResponse("sunny"),
	}}
	r, _ := newTestRunner(t, model)

	events, err := r.RunStream(context.Background(), "s1", "weather?")
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	var types []schema.EventType
	for event := range events {
		types = append(types, event.Type)
	}
	want := []schema.EventType{
		schema.EventStart,
		schema.EventToolCall,
		schema.EventToolResult,
		schema.EventMessage,
		schema.EventEnd,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("position %d: expected %s, got %s", i, typ, types[i])
		}
	}
}

func TestRunMaxTurns(t *testing.T) {
	responses := make([]*llm.Response, 0, 10)
	for i := 0; i < 10; i++ {
		responses = append(responses, toolCallResponse("c", "getLocation", `{}`))
	}
	model := &scriptedModel{responses: responses}
	r, _ := newTestRunner(t, model)
	r.config.MaxTurns = 3

	if _, err := r.Run(context.Background(), "s1", "loop"); !errors.Is(err, schema.ErrMaxTurns) {
		t.Fatalf("expected ErrMaxTurns, got %v", err)
	}
	if len(model.requests) != 3 {
		t.Errorf("expected 3 model calls, got %d", len(model.requests))
	}
}

func TestBeforeToolVeto(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCallResponse("c1", "getWeather", `{"city":"Lisbon"}`),
		textResponse("done"),
	}}
	r, sessions := newTestRunner(t, model)
	r.config.Middlewares = []Middleware{NewAllowlistMiddleware("convert")}

	if _, err := r.Run(context.Background(), "s1", "weather?"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	saved, _ := sessions.Get(context.Background(), "s1")
	result := schema.ParseResult(saved.Messages[2].Content)
	if result.Success {
		t.Fatal("vetoed call must record a failure result")
	}
}

func TestRunMissingModelConfig(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected config validation error")
	}
}
