package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/synto-ai/synto/chain"
	"github.com/synto-ai/synto/schema"
)

// defaultCopyAmount is invested when a portfolio copy names no amount.
const defaultCopyAmount = 0.1

// Manager holds armed confirmations and routes user decisions to the
// goroutines awaiting them. Confirmations wait indefinitely unless an
// expiry is configured. A confirmation lives for one cycle only: it is
// removed from the maps when Await hands its final result back.
type Manager struct {
	quoter    chain.Quoter
	submitter chain.Submitter
	allocator chain.Allocator
	expiry    time.Duration

	mutex         sync.Mutex
	confirmations map[string]*Confirmation
	decisionChans map[string]chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithExpiry bounds how long an armed confirmation waits before
// failing. Zero keeps the default unbounded wait.
func WithExpiry(d time.Duration) Option {
	return func(m *Manager) {
		m.expiry = d
	}
}

// WithAllocator overrides the portfolio allocation source. The default
// serves the mocked split.
func WithAllocator(a chain.Allocator) Option {
	return func(m *Manager) {
		m.allocator = a
	}
}

// NewManager creates a confirmation manager over the given chain
// collaborators.
func NewManager(quoter chain.Quoter, submitter chain.Submitter, opts ...Option) *Manager {
	m := &Manager{
		quoter:        quoter,
		submitter:     submitter,
		allocator:     chain.MockAllocator{},
		confirmations: make(map[string]*Confirmation),
		decisionChans: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Defer arms a confirmation for a deferred wallet tool call. The call
// ID keys the confirmation; re-arming an unresolved ID is an error.
func (m *Manager) Defer(call schema.ToolCall, walletAddress string) (*Confirmation, error) {
	args, err := call.ArgsMap()
	if err != nil {
		return nil, schema.NewToolError(call.Name, "defer", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, ok := m.confirmations[call.ID]; ok && !existing.State.Terminal() {
		return nil, schema.NewToolError(call.Name, "defer", schema.ErrToolInProgress)
	}

	confirmation := &Confirmation{
		ID:            call.ID,
		ToolName:      call.Name,
		Args:          args,
		WalletAddress: walletAddress,
		State:         StateWaiting,
		CreatedAt:     time.Now().UTC(),
	}
	m.confirmations[call.ID] = confirmation
	m.decisionChans[call.ID] = make(chan struct{}, 1)
	return confirmation, nil
}

// Get returns a snapshot of the confirmation with the given ID.
func (m *Manager) Get(id string) (*Confirmation, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	confirmation, ok := m.confirmations[id]
	if !ok {
		return nil, schema.ErrConfirmationNotFound
	}
	clone := *confirmation
	return &clone, nil
}

// Pending returns the confirmations still waiting for a decision.
func (m *Manager) Pending() []*Confirmation {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var pending []*Confirmation
	for _, confirmation := range m.confirmations {
		if confirmation.State == StateWaiting {
			clone := *confirmation
			pending = append(pending, &clone)
		}
	}
	return pending
}

// Confirm applies a positive decision: the transaction is built,
// submitted, and the confirmation resolves to success or failed.
func (m *Manager) Confirm(ctx context.Context, id string) (*Confirmation, error) {
	m.mutex.Lock()
	confirmation, ok := m.confirmations[id]
	if !ok {
		m.mutex.Unlock()
		return nil, schema.ErrConfirmationNotFound
	}
	if confirmation.State != StateWaiting {
		m.mutex.Unlock()
		return nil, schema.ErrConfirmationResolved
	}
	confirmation.State = StatePending
	clone := *confirmation
	m.mutex.Unlock()

	tx, result := m.buildTransaction(ctx, &clone)
	if result == nil {
		hash, err := m.submitter.Submit(ctx, tx)
		if err != nil {
			result = schema.NewErrorResultf("Transaction failed: " + err.Error())
		} else {
			result = successResult(&clone, tx)
			result.TxHash = hash
		}
	}

	return m.resolve(id, result)
}

// Reject applies a negative decision. The confirmation fails with a
// cancellation result and nothing is submitted.
func (m *Manager) Reject(id string) (*Confirmation, error) {
	m.mutex.Lock()
	confirmation, ok := m.confirmations[id]
	if !ok {
		m.mutex.Unlock()
		return nil, schema.ErrConfirmationNotFound
	}
	if confirmation.State != StateWaiting {
		m.mutex.Unlock()
		return nil, schema.ErrConfirmationResolved
	}
	m.mutex.Unlock()

	return m.resolve(id, schema.NewErrorResultf("Transaction cancelled by user"))
}

// Await blocks until the confirmation resolves, the context is
// cancelled, or the configured expiry elapses. On resolution it returns
// the serialized final result and ends the confirmation cycle; the ID
// is free for a fresh Defer afterwards. Context cancellation leaves the
// confirmation armed.
func (m *Manager) Await(ctx context.Context, id string) (string, error) {
	m.mutex.Lock()
	confirmation, ok := m.confirmations[id]
	if !ok {
		m.mutex.Unlock()
		return "", schema.ErrConfirmationNotFound
	}
	if confirmation.State.Terminal() {
		result := confirmation.Result
		delete(m.confirmations, id)
		delete(m.decisionChans, id)
		m.mutex.Unlock()
		return result.ToJSON(), nil
	}
	decided := m.decisionChans[id]
	m.mutex.Unlock()

	var expiry <-chan time.Time
	if m.expiry > 0 {
		timer := time.NewTimer(m.expiry)
		defer timer.Stop()
		expiry = timer.C
	}

	select {
	case <-decided:
		return m.take(id)
	case <-expiry:
		if m.expire(id) {
			m.take(id)
			return "", schema.ErrConfirmationExpired
		}
		// A decision won the race; its result stands.
		<-decided
		return m.take(id)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// take removes a resolved confirmation and hands back its serialized
// final result. This is the end of the confirmation's lifetime.
func (m *Manager) take(id string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	confirmation, ok := m.confirmations[id]
	if !ok {
		return "", schema.ErrConfirmationNotFound
	}
	delete(m.confirmations, id)
	delete(m.decisionChans, id)
	return confirmation.Result.ToJSON(), nil
}

// expire fails a confirmation that is still waiting for a decision. It
// reports false when a decision landed first.
func (m *Manager) expire(id string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	confirmation, ok := m.confirmations[id]
	if !ok || confirmation.State != StateWaiting {
		return false
	}
	confirmation.State = StateFailed
	confirmation.Result = schema.NewErrorResultf("Transaction confirmation expired")
	confirmation.ResolvedAt = time.Now().UTC()
	return true
}

// resolve moves a confirmation to its terminal state and wakes any
// waiter. Terminal states absorb: a second resolution is rejected.
func (m *Manager) resolve(id string, result *schema.ToolResult) (*Confirmation, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	confirmation, ok := m.confirmations[id]
	if !ok {
		return nil, schema.ErrConfirmationNotFound
	}
	if confirmation.State.Terminal() {
		return nil, schema.ErrConfirmationResolved
	}

	if result.Success {
		confirmation.State = StateSuccess
	} else {
		confirmation.State = StateFailed
	}
	confirmation.Result = result
	confirmation.ResolvedAt = time.Now().UTC()

	if decided, ok := m.decisionChans[id]; ok {
		select {
		case decided <- struct{}{}:
		default:
		}
	}

	clone := *confirmation
	return &clone, nil
}

// buildTransaction prepares the submission for a confirmed action. A
// non-nil result short-circuits submission with a failure. Tool names
// are matched case-insensitively, like the registry resolves them.
func (m *Manager) buildTransaction(ctx context.Context, c *Confirmation) (*chain.Transaction, *schema.ToolResult) {
	switch strings.ToLower(c.ToolName) {
	case "send":
		to, _ := c.Args["to"].(string)
		amount, _ := c.Args["amount"].(float64)
		return &chain.Transaction{
			Kind:   "transfer",
			From:   c.WalletAddress,
			To:     to,
			Symbol: chain.NativeSymbol,
			Amount: amount,
		}, nil

	case "swap":
		amount, _ := c.Args["amount"].(float64)
		input, _ := c.Args["input"].(string)
		output, _ := c.Args["output"].(string)
		quote, err := m.quoter.Quote(ctx, input, output, amount)
		if err != nil {
			return nil, schema.NewErrorResultf("Failed to prepare swap: " + err.Error())
		}
		c.Args["outAmount"] = quote.OutAmount
		return &chain.Transaction{
			Kind:        "swap",
			From:        c.WalletAddress,
			Symbol:      strings.ToUpper(input),
			Amount:      amount,
			Instruction: quote.Instruction,
		}, nil

	case "copyportfolio":
		username, _ := c.Args["username"].(string)
		username = strings.TrimPrefix(username, "@")
		amount, ok := c.Args["amount"].(float64)
		if !ok || amount <= 0 {
			amount = defaultCopyAmount
		}
		currency, _ := c.Args["currency"].(string)
		if currency == "" {
			currency = "USD"
		}
		allocations, err := m.allocator.Allocations(ctx, username)
		if err != nil {
			return nil, schema.NewErrorResultf("Failed to copy portfolio: " + err.Error())
		}
		c.Args["username"] = username
		c.Args["amount"] = amount
		c.Args["currency"] = strings.ToUpper(currency)
		c.Args["allocations"] = allocations
		return &chain.Transaction{
			Kind:   "copyportfolio",
			From:   c.WalletAddress,
			Symbol: strings.ToUpper(currency),
			Amount: amount,
		}, nil

	default:
		return &chain.Transaction{
			Kind: c.ToolName,
			From: c.WalletAddress,
		}, nil
	}
}

func successResult(c *Confirmation, tx *chain.Transaction) *schema.ToolResult {
	switch strings.ToLower(c.ToolName) {
	case "send":
		return schema.NewSuccessResult(
			map[string]interface{}{
				"sender":    c.WalletAddress,
				"recipient": tx.To,
				"amount":    tx.Amount,
				"token":     tx.Symbol,
			},
			fmt.Sprintf("Sent %s %s to %s", formatAmount(tx.Amount), tx.Symbol, tx.To),
		)

	case "swap":
		input, _ := c.Args["input"].(string)
		output, _ := c.Args["output"].(string)
		outAmount, _ := c.Args["outAmount"].(float64)
		return schema.NewSuccessResult(
			map[string]interface{}{
				"fromToken":  input,
				"toToken":    output,
				"fromAmount": tx.Amount,
				"toAmount":   outAmount,
			},
			fmt.Sprintf("Swapped %s %s for %s %s", formatAmount(tx.Amount), input, formatAmount(outAmount), output),
		)

	case "copyportfolio":
		username, _ := c.Args["username"].(string)
		currency, _ := c.Args["currency"].(string)
		allocations, _ := c.Args["allocations"].([]chain.Allocation)
		assets := make([]map[string]interface{}, 0, len(allocations))
		legs := make([]map[string]interface{}, 0, len(allocations))
		for _, allocation := range allocations {
			assets = append(assets, map[string]interface{}{
				"symbol":     allocation.Symbol,
				"allocation": allocation.Weight,
			})
			legs = append(legs, map[string]interface{}{
				"from":   currency,
				"to":     allocation.Symbol,
				"amount": tx.Amount * allocation.Weight,
			})
		}
		return schema.NewSuccessResult(
			map[string]interface{}{
				"username": username,
				"portfolio": map[string]interface{}{
					"assets":      assets,
					"swapResults": legs,
				},
			},
			fmt.Sprintf("Copied @%s's portfolio allocation", username),
		)

	default:
		return schema.NewSuccessResult(
			map[string]interface{}{"kind": tx.Kind},
			fmt.Sprintf("Transaction %s completed", tx.Kind),
		)
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
