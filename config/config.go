// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/synto-ai/synto/llm"
)

// Config is the full runtime configuration.
type Config struct {
	// Model provider settings.
	Provider string
	Model    string
	APIKey   string
	// BaseURL points the OpenAI provider at a self-hosted endpoint.
	BaseURL string
	// PrivateMode forces a local OpenAI-compatible server so prompts
	// never leave the machine.
	PrivateMode bool

	// WalletAddress is the connected wallet, empty when disconnected.
	WalletAddress string

	// Storage paths.
	SessionDBPath string
	ContactDBPath string

	// Chain endpoints. Empty values select the deterministic mocks.
	RPCURL      string
	QuoteURL    string
	PriceURL    string
	PriceAPIKey string

	// ProfileBaseURL hosts the social profile pages to scrape.
	ProfileBaseURL string

	// DemoMode swaps every external collaborator for its mock.
	DemoMode bool

	LogLevel string
}

// Load reads configuration from SYNTO_* environment variables.
func Load() *Config {
	return &Config{
		Provider:       getEnv("SYNTO_PROVIDER", "openai"),
		Model:          getEnv("SYNTO_MODEL", "gpt-4o-mini"),
		APIKey:         getEnv("SYNTO_API_KEY", ""),
		BaseURL:        getEnv("SYNTO_BASE_URL", ""),
		PrivateMode:    getBoolEnv("SYNTO_PRIVATE_MODE", false),
		WalletAddress:  getEnv("SYNTO_WALLET_ADDRESS", ""),
		SessionDBPath:  getEnv("SYNTO_SESSION_DB", "synto-sessions.db"),
		ContactDBPath:  getEnv("SYNTO_CONTACT_DB", "synto-contacts.db"),
		RPCURL:         getEnv("SYNTO_RPC_URL", ""),
		QuoteURL:       getEnv("SYNTO_QUOTE_URL", ""),
		PriceURL:       getEnv("SYNTO_PRICE_URL", ""),
		PriceAPIKey:    getEnv("SYNTO_PRICE_API_KEY", ""),
		ProfileBaseURL: getEnv("SYNTO_PROFILE_URL", "https://x.com"),
		DemoMode:       getBoolEnv("SYNTO_DEMO_MODE", false),
		LogLevel:       getEnv("SYNTO_LOG_LEVEL", "info"),
	}
}

// NewModel builds the chat model the configuration selects. Private
// mode pins the provider to a local OpenAI-compatible server.
func (c *Config) NewModel() (llm.ChatModel, error) {
	if c.PrivateMode {
		baseURL := c.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		return llm.NewOpenAIModel(c.APIKey, c.Model, baseURL)
	}

	switch c.Provider {
	case "openai":
		return llm.NewOpenAIModel(c.APIKey, c.Model, c.BaseURL)
	case "anthropic":
		return llm.NewAnthropicModel(c.APIKey, c.Model)
	case "gemini":
		return llm.NewGeminiModel(c.APIKey, c.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", c.Provider)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
