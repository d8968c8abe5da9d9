package schema

import (
	"encoding/json"
	"time"
)

// InvocationState tracks a tool call through its UI-facing lifecycle.
type InvocationState string

const (
	StatePartialCall InvocationState = "partial-call"
	StateCall        InvocationState = "call"
	StateResult      InvocationState = "result"
)

// ToolInvocation is the lifecycle view of one tool call as surfaced to
// the rendering layer. Result is the serialized ToolResult once the
// state reaches StateResult.
type ToolInvocation struct {
	CallID string          `json:"toolCallId"`
	Name   string          `json:"toolName"`
	State  InvocationState `json:"state"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result string          `json:"result,omitempty"`
}

// EventType defines stream event types.
type EventType string

const (
	EventStart        EventType = "start"
	EventToken        EventType = "token"
	EventEnd          EventType = "end"
	EventError        EventType = "error"
	EventMessage      EventType = "message"
	EventToolCall     EventType = "tool_call"
	EventToolResult   EventType = "tool_result"
	EventConfirmation EventType = "confirmation"
)

// StreamEvent represents one event in a chat run stream.
type StreamEvent struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Error     error       `json:"error,omitempty"`
}

// NewStreamEvent creates a stream event.
func NewStreamEvent(eventType EventType, sessionID string, data interface{}) StreamEvent {
	return StreamEvent{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error, sessionID string) StreamEvent {
	return StreamEvent{
		Type:      EventError,
		SessionID: sessionID,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// NewToolCallEvent creates a tool call lifecycle event in StateCall.
func NewToolCallEvent(call ToolCall, sessionID string) StreamEvent {
	return NewStreamEvent(EventToolCall, sessionID, ToolInvocation{
		CallID: call.ID,
		Name:   call.Name,
		State:  StateCall,
		Args:   call.Args,
	})
}

// NewToolResultEvent creates a tool result lifecycle event.
func NewToolResultEvent(call ToolCall, result string, sessionID string) StreamEvent {
	return NewStreamEvent(EventToolResult, sessionID, ToolInvocation{
		CallID: call.ID,
		Name:   call.Name,
		State:  StateResult,
		Args:   call.Args,
		Result: result,
	})
}
