package observer

import "go.uber.org/zap"

// ZapObserver logs lifecycle callbacks through a structured logger.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver wraps a zap logger as an Observer.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (z *ZapObserver) OnLLMStart(sessionID, model string) {
	z.logger.Debug("llm request",
		zap.String("session_id", sessionID),
		zap.String("model", model),
	)
}

func (z *ZapObserver) OnLLMEnd(sessionID, model string, promptTokens, completionTokens int) {
	z.logger.Debug("llm response",
		zap.String("session_id", sessionID),
		zap.String("model", model),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens),
	)
}

func (z *ZapObserver) OnToolCall(sessionID, toolName, callID string) {
	z.logger.Info("tool call",
		zap.String("session_id", sessionID),
		zap.String("tool", toolName),
		zap.String("call_id", callID),
	)
}

func (z *ZapObserver) OnToolResult(sessionID, toolName, callID string, success bool) {
	z.logger.Info("tool result",
		zap.String("session_id", sessionID),
		zap.String("tool", toolName),
		zap.String("call_id", callID),
		zap.Bool("success", success),
	)
}

func (z *ZapObserver) OnConfirmation(sessionID, toolName, callID string) {
	z.logger.Info("confirmation armed",
		zap.String("session_id", sessionID),
		zap.String("tool", toolName),
		zap.String("call_id", callID),
	)
}

func (z *ZapObserver) OnError(sessionID string, err error) {
	z.logger.Error("turn error",
		zap.String("session_id", sessionID),
		zap.Error(err),
	)
}

var _ Observer = (*ZapObserver)(nil)
