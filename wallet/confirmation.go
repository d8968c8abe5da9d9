// Package wallet implements the confirmation flow for wallet-category
// tools. A deferred tool call becomes a Confirmation that waits for an
// explicit user decision; only a confirmed transaction is ever built
// and submitted.
package wallet

import (
	"strings"
	"time"

	"github.com/synto-ai/synto/schema"
)

// State is the lifecycle state of a confirmation.
type State string

const (
	// StateWaiting means the transaction is armed and awaiting the
	// user's decision.
	StateWaiting State = "waiting_confirmation"
	// StatePending means the user confirmed and submission is in flight.
	StatePending State = "pending"
	// StateSuccess and StateFailed are terminal. A resolved
	// confirmation never changes state again.
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Confirmation is one armed wallet action keyed by its tool call ID.
type Confirmation struct {
	ID            string                 `json:"id"`
	ToolName      string                 `json:"toolName"`
	Args          map[string]interface{} `json:"args"`
	WalletAddress string                 `json:"walletAddress"`
	State         State                  `json:"state"`
	Result        *schema.ToolResult     `json:"result,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	ResolvedAt    time.Time              `json:"resolvedAt,omitempty"`
}

// Summary renders the action for display in a confirmation prompt. The
// tool name is matched case-insensitively, like the registry resolves it.
func (c *Confirmation) Summary() string {
	switch strings.ToLower(c.ToolName) {
	case "send":
		return summarizeSend(c.Args)
	case "swap":
		return summarizeSwap(c.Args)
	case "copyportfolio":
		return summarizeCopy(c.Args)
	default:
		return c.ToolName
	}
}

func summarizeSend(args map[string]interface{}) string {
	amount, _ := args["amount"].(float64)
	to, _ := args["to"].(string)
	return formatAmount(amount) + " SOL to " + to
}

func summarizeSwap(args map[string]interface{}) string {
	amount, _ := args["amount"].(float64)
	input, _ := args["input"].(string)
	output, _ := args["output"].(string)
	return formatAmount(amount) + " " + input + " for " + output
}

func summarizeCopy(args map[string]interface{}) string {
	username, _ := args["username"].(string)
	username = strings.TrimPrefix(username, "@")
	amount, ok := args["amount"].(float64)
	if !ok || amount <= 0 {
		amount = defaultCopyAmount
	}
	currency, _ := args["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	return formatAmount(amount) + " " + strings.ToUpper(currency) + " copying @" + username
}
