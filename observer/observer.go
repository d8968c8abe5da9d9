// Package observer defines the hook points the runner reports through.
package observer

// Observer receives lifecycle callbacks during a chat turn.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	OnLLMStart(sessionID, model string)
	OnLLMEnd(sessionID, model string, promptTokens, completionTokens int)
	OnToolCall(sessionID, toolName, callID string)
	OnToolResult(sessionID, toolName, callID string, success bool)
	OnConfirmation(sessionID, toolName, callID string)
	OnError(sessionID string, err error)
}

// Noop discards all callbacks.
type Noop struct{}

func (Noop) OnLLMStart(sessionID, model string)                                   {}
func (Noop) OnLLMEnd(sessionID, model string, promptTokens, completionTokens int) {}
func (Noop) OnToolCall(sessionID, toolName, callID string)                        {}
func (Noop) OnToolResult(sessionID, toolName, callID string, success bool)        {}
func (Noop) OnConfirmation(sessionID, toolName, callID string)                    {}
func (Noop) OnError(sessionID string, err error)                                  {}

// Composite fans callbacks out to multiple observers in order.
type Composite struct {
	observers []Observer
}

// NewComposite builds a fan-out observer.
func NewComposite(observers ...Observer) *Composite {
	return &Composite{observers: observers}
}

func (c *Composite) OnLLMStart(sessionID, model string) {
	for _, o := range c.observers {
		o.OnLLMStart(sessionID, model)
	}
}

func (c *Composite) OnLLMEnd(sessionID, model string, promptTokens, completionTokens int) {
	for _, o := range c.observers {
		o.OnLLMEnd(sessionID, model, promptTokens, completionTokens)
	}
}

func (c *Composite) OnToolCall(sessionID, toolName, callID string) {
	for _, o := range c.observers {
		o.OnToolCall(sessionID, toolName, callID)
	}
}

func (c *Composite) OnToolResult(sessionID, toolName, callID string, success bool) {
	for _, o := range c.observers {
		o.OnToolResult(sessionID, toolName, callID, success)
	}
}

func (c *Composite) OnConfirmation(sessionID, toolName, callID string) {
	for _, o := range c.observers {
		o.OnConfirmation(sessionID, toolName, callID)
	}
}

func (c *Composite) OnError(sessionID string, err error) {
	for _, o := range c.observers {
		o.OnError(sessionID, err)
	}
}

var (
	_ Observer = Noop{}
	_ Observer = (*Composite)(nil)
)
