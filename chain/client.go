package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RPCClient talks to the balance/portfolio and transaction endpoints of
// an RPC gateway.
type RPCClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRPCClient creates a client for the given gateway base URL.
func NewRPCClient(baseURL string) *RPCClient {
	return &RPCClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Balances fetches asset balances for a wallet. The gateway reports
// token balances; the native entry is synthesized in when absent.
func (c *RPCClient) Balances(ctx context.Context, address string) (map[string]float64, error) {
	var payload struct {
		Native float64            `json:"native"`
		Tokens map[string]float64 `json:"tokens"`
	}
	reqURL := fmt.Sprintf("%s/v1/balances/%s", c.baseURL, url.PathEscape(address))
	if err := c.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, err
	}

	balances := make(map[string]float64, len(payload.Tokens)+1)
	for symbol, amount := range payload.Tokens {
		balances[symbol] = amount
	}
	if _, ok := balances[NativeSymbol]; !ok {
		balances[NativeSymbol] = payload.Native
	}
	return balances, nil
}

// Submit posts a transaction and returns the reported hash.
func (c *RPCClient) Submit(ctx context.Context, tx *Transaction) (string, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transaction submission failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var payload struct {
		Hash string `json:"hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Hash == "" {
		return "", fmt.Errorf("gateway returned no transaction hash")
	}
	return payload.Hash, nil
}

func (c *RPCClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Balancer = (*RPCClient)(nil)
var _ Submitter = (*RPCClient)(nil)

// QuoteClient fetches pre-built swap instructions from a quoting
// aggregator.
type QuoteClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewQuoteClient creates a quote client for the given base URL.
func NewQuoteClient(baseURL string) *QuoteClient {
	return &QuoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Quote requests a swap quote for the given pair and amount.
func (c *QuoteClient) Quote(ctx context.Context, input, output string, amount float64) (*Quote, error) {
	query := url.Values{}
	query.Set("input", input)
	query.Set("output", output)
	query.Set("amount", fmt.Sprintf("%g", amount))

	var payload struct {
		OutAmount   float64 `json:"outAmount"`
		Instruction string  `json:"instruction"`
	}
	reqURL := fmt.Sprintf("%s/v1/quote?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request failed with status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &Quote{
		InputSymbol:  input,
		OutputSymbol: output,
		InAmount:     amount,
		OutAmount:    payload.OutAmount,
		Instruction:  []byte(payload.Instruction),
	}, nil
}

var _ Quoter = (*QuoteClient)(nil)
