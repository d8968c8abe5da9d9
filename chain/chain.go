// Package chain holds the blockchain-facing collaborators: balance
// queries, swap quoting, transaction submission and price lookups. The
// executor and the wallet confirmation flow depend only on the
// interfaces here; live HTTP clients and deterministic mocks are
// interchangeable strategies.
package chain

import "context"

// NativeSymbol is the chain's native asset symbol, always synthesized
// into balance maps.
const NativeSymbol = "SOL"

// Balancer returns the asset balances held by a wallet address, keyed
// by symbol, including the native entry.
type Balancer interface {
	Balances(ctx context.Context, address string) (map[string]float64, error)
}

// Quote is a pre-built swap prepared by an external quoting service.
type Quote struct {
	InputSymbol  string  `json:"inputSymbol"`
	OutputSymbol string  `json:"outputSymbol"`
	InAmount     float64 `json:"inAmount"`
	OutAmount    float64 `json:"outAmount"`
	// Instruction is the opaque serialized swap transaction to submit.
	Instruction []byte `json:"instruction,omitempty"`
}

// Quoter fetches a pre-built swap instruction for a token pair.
type Quoter interface {
	Quote(ctx context.Context, input, output string, amount float64) (*Quote, error)
}

// Transaction is one submission-ready chain transaction.
type Transaction struct {
	Kind        string  `json:"kind"`
	From        string  `json:"from"`
	To          string  `json:"to,omitempty"`
	Symbol      string  `json:"symbol,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Instruction []byte  `json:"instruction,omitempty"`
}

// Submitter submits a transaction and returns its hash. Submission is
// a single blocking round-trip; retry policy belongs to the caller's
// caller (the user re-confirming), never to this layer.
type Submitter interface {
	Submit(ctx context.Context, tx *Transaction) (string, error)
}

// PriceSource converts between asset symbols at the current rate.
type PriceSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Allocation is one leg of a copied portfolio split. Weight is the
// fraction of the invested amount routed into Symbol.
type Allocation struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"allocation"`
}

// Allocator resolves the portfolio split published by a trader.
type Allocator interface {
	Allocations(ctx context.Context, username string) ([]Allocation, error)
}
