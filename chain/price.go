package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PriceClient resolves conversion rates from a market data API that
// answers GET <base>/data/price?fsym=FROM&tsyms=TO with a JSON object
// keyed by the target symbol.
type PriceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPriceClient creates a price client. The API key is optional for
// unauthenticated tiers.
func NewPriceClient(baseURL, apiKey string) *PriceClient {
	return &PriceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Rate returns how many units of "to" one unit of "from" buys.
func (c *PriceClient) Rate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	query := url.Values{}
	query.Set("fsym", from)
	query.Set("tsyms", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/data/price?%s", c.baseURL, query.Encode()), nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price request failed with status code: %d", resp.StatusCode)
	}

	var payload map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	rate, ok := payload[to]
	if !ok {
		return 0, fmt.Errorf("no rate returned for %s/%s", from, to)
	}
	return rate, nil
}

var _ PriceSource = (*PriceClient)(nil)
