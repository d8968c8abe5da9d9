// Package market resolves marketplace tool assets. Owning a tool asset
// is what unlocks the matching tool in a session's toolbox.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/synto-ai/synto/tools"
)

// ToolAsset is one owned marketplace asset pointing at its metadata.
type ToolAsset struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Attribute is one trait on a tool asset.
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// Metadata is the JSON document a tool asset's URI resolves to.
type Metadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	Attributes  []Attribute            `json:"attributes,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// MetadataClient fetches tool asset metadata documents.
type MetadataClient struct {
	httpClient *http.Client
}

// NewMetadataClient creates a metadata client.
func NewMetadataClient() *MetadataClient {
	return &MetadataClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch resolves one asset URI into its metadata document.
func (c *MetadataClient) Fetch(ctx context.Context, uri string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata request failed with status code: %d", resp.StatusCode)
	}

	var metadata Metadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &metadata, nil
}

// EnableOwned enables the tool behind each owned asset. Assets whose
// metadata cannot be fetched, and assets naming tools this build lacks,
// are skipped; one bad asset must not lock the whole toolbox.
func (c *MetadataClient) EnableOwned(ctx context.Context, toolbox *tools.Toolbox, assets []ToolAsset) []string {
	var enabled []string
	for _, asset := range assets {
		name := asset.Name
		if asset.URI != "" {
			if metadata, err := c.Fetch(ctx, asset.URI); err == nil && metadata.Name != "" {
				name = metadata.Name
			}
		}
		if toolbox.Registry().Has(name) {
			toolbox.Enable(name)
			enabled = append(enabled, name)
		}
	}
	return enabled
}
