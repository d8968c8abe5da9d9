package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// MockBalancer serves balances from an in-memory table. Useful in demo
// mode and in tests where no gateway is reachable.
type MockBalancer struct {
	mutex    sync.RWMutex
	accounts map[string]map[string]float64
}

// NewMockBalancer creates an empty mock balancer.
func NewMockBalancer() *MockBalancer {
	return &MockBalancer{
		accounts: make(map[string]map[string]float64),
	}
}

// SetBalance sets one asset balance for an address.
func (m *MockBalancer) SetBalance(address, symbol string, amount float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.accounts[address] == nil {
		m.accounts[address] = make(map[string]float64)
	}
	m.accounts[address][strings.ToUpper(symbol)] = amount
}

// Balances returns the account's balances. Unknown addresses hold a
// zero native balance rather than erroring, matching gateway behavior
// for fresh wallets.
func (m *MockBalancer) Balances(ctx context.Context, address string) (map[string]float64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	balances := map[string]float64{NativeSymbol: 0}
	for symbol, amount := range m.accounts[address] {
		balances[symbol] = amount
	}
	return balances, nil
}

// MockQuoter quotes swaps from a static rate table.
type MockQuoter struct {
	mutex sync.RWMutex
	rates map[string]float64
}

// NewMockQuoter creates a quoter with representative pair rates.
func NewMockQuoter() *MockQuoter {
	return &MockQuoter{
		rates: map[string]float64{
			"SOL/USDC": 150,
			"USDC/SOL": 1.0 / 150,
			"SOL/BONK": 6_500_000,
			"BONK/SOL": 1.0 / 6_500_000,
			"SOL/JUP":  180,
			"JUP/SOL":  1.0 / 180,
		},
	}
}

// SetRate overrides the rate for one directed pair.
func (m *MockQuoter) SetRate(input, output string, rate float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rates[pairKey(input, output)] = rate
}

// Quote computes the output amount from the rate table.
func (m *MockQuoter) Quote(ctx context.Context, input, output string, amount float64) (*Quote, error) {
	m.mutex.RLock()
	rate, ok := m.rates[pairKey(input, output)]
	m.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no route for pair %s/%s", input, output)
	}

	return &Quote{
		InputSymbol:  strings.ToUpper(input),
		OutputSymbol: strings.ToUpper(output),
		InAmount:     amount,
		OutAmount:    amount * rate,
		Instruction:  []byte(fmt.Sprintf("mock-swap:%s:%s:%g", input, output, amount)),
	}, nil
}

func pairKey(input, output string) string {
	return strings.ToUpper(input) + "/" + strings.ToUpper(output)
}

// MockSubmitter fabricates transaction hashes without touching a chain.
type MockSubmitter struct {
	// Fail forces submissions to error, for exercising failure paths.
	Fail bool

	mutex     sync.Mutex
	submitted []*Transaction
}

// NewMockSubmitter creates a submitter that accepts everything.
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{}
}

// Submit records the transaction and returns a pseudo-random hash.
func (m *MockSubmitter) Submit(ctx context.Context, tx *Transaction) (string, error) {
	if m.Fail {
		return "", fmt.Errorf("transaction rejected by network")
	}

	m.mutex.Lock()
	m.submitted = append(m.submitted, tx)
	m.mutex.Unlock()

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Submitted returns the transactions accepted so far.
func (m *MockSubmitter) Submitted() []*Transaction {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]*Transaction, len(m.submitted))
	copy(out, m.submitted)
	return out
}

// MockPriceSource serves conversion rates from a static table, falling
// back through USD cross rates when a direct pair is missing.
type MockPriceSource struct {
	mutex sync.RWMutex
	usd   map[string]float64
}

// NewMockPriceSource creates a price source with representative USD
// prices.
func NewMockPriceSource() *MockPriceSource {
	return &MockPriceSource{
		usd: map[string]float64{
			"USD":  1,
			"USDC": 1,
			"SOL":  150,
			"BTC":  97_000,
			"ETH":  3_400,
			"META": 42,
		},
	}
}

// SetUSDPrice sets the USD price for a symbol.
func (m *MockPriceSource) SetUSDPrice(symbol string, price float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.usd[strings.ToUpper(symbol)] = price
}

// Rate cross-rates the pair through USD.
func (m *MockPriceSource) Rate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	fromUSD, ok := m.usd[from]
	if !ok {
		return 0, fmt.Errorf("no price for %s", from)
	}
	toUSD, ok := m.usd[to]
	if !ok {
		return 0, fmt.Errorf("no price for %s", to)
	}
	return fromUSD / toUSD, nil
}

// MockAllocator serves a fixed two-asset split for any trader, standing
// in for the scrape-and-analyze pipeline.
type MockAllocator struct{}

// Allocations returns an even SOL/wBTC split.
func (MockAllocator) Allocations(ctx context.Context, username string) ([]Allocation, error) {
	return []Allocation{
		{Symbol: "SOL", Weight: 0.5},
		{Symbol: "wBTC", Weight: 0.5},
	}, nil
}

var (
	_ Balancer    = (*MockBalancer)(nil)
	_ Quoter      = (*MockQuoter)(nil)
	_ Submitter   = (*MockSubmitter)(nil)
	_ PriceSource = (*MockPriceSource)(nil)
	_ Allocator   = MockAllocator{}
)
