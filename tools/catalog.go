package tools

import (
	"github.com/synto-ai/synto/chain"
	"github.com/synto-ai/synto/contacts"
)

// SwapTokens are the symbols the swap tool accepts on either side.
var SwapTokens = []string{"SOL", "USDC", "BONK", "JUP"}

// BalanceSymbols are the assets the balance tool can report on.
var BalanceSymbols = []string{"SOL", "BTC", "USD", "ETH", "META"}

// Catalog builds the canonical tool set over its collaborators. Wallet
// tools carry schemas but no handler: their execution happens in the
// confirmation flow, never in the executor.
type Catalog struct {
	Contacts contacts.Service
	Balances chain.Balancer
	Prices   chain.PriceSource
	Profiles ProfileFetcher
}

// Register adds every canonical tool to the registry.
func (c *Catalog) Register(registry *Registry) error {
	definitions := []Tool{
		NewTool("send",
			"Send tokens from the connected wallet to a recipient address",
			CategoryWallet,
			NewSchema(map[string]*Property{
				"to":     BoundedStringProperty("Recipient wallet address", 32, 44),
				"amount": PositiveNumberProperty("Amount of tokens to send"),
			}, "to", "amount"),
			nil,
		),
		NewTool("swap",
			"Swap one token for another at the current market rate",
			CategoryWallet,
			NewSchema(map[string]*Property{
				"amount": PositiveNumberProperty("Amount of the input token to swap"),
				"input":  EnumProperty("Token to swap from", SwapTokens),
				"output": EnumProperty("Token to swap to", SwapTokens),
			}, "amount", "input", "output"),
			nil,
		),
		NewTool("bridge",
			"Bridge tokens to another chain",
			CategoryWallet,
			NewSchema(map[string]*Property{}),
			nil,
		),
		NewTool("stake",
			"Stake tokens with a validator",
			CategoryWallet,
			NewSchema(map[string]*Property{}),
			nil,
		),
		NewTool("copyPortfolio",
			"Copy a trader's portfolio allocation based on their Twitter username",
			CategoryWallet,
			NewSchema(map[string]*Property{
				"username": StringProperty("Twitter username of the trader"),
				"amount":   PositiveNumberProperty("Amount to invest, defaults to 0.1"),
				"currency": StringProperty("Base currency for the allocation, defaults to USD"),
			}, "username"),
			nil,
		),
		NewTool("checkBalance",
			"Check the connected wallet's balance for one asset",
			CategoryUtility,
			NewSchema(map[string]*Property{
				"address": EnumProperty("Asset symbol to check", BalanceSymbols),
			}, "address"),
			c.checkBalance,
		),
		NewTool("checkPortfolio",
			"Retrieve all asset balances held by the connected wallet",
			CategoryUtility,
			NewSchema(map[string]*Property{}),
			c.checkPortfolio,
		),
		NewTool("addContact",
			"Save a recipient address under a memorable name",
			CategorySocial,
			NewSchema(map[string]*Property{
				"name":    BoundedStringProperty("Contact name, at least 3 characters", 3, 0),
				"address": BoundedStringProperty("Contact wallet address", 32, 44),
			}, "name", "address"),
			c.addContact,
		),
		NewTool("getContact",
			"Look up a saved contact by name",
			CategorySocial,
			NewSchema(map[string]*Property{
				"name": BoundedStringProperty("Contact name to look up", 3, 0),
			}, "name"),
			c.getContact,
		),
		NewTool("convert",
			"Convert an amount between two currencies at the current rate",
			CategoryUtility,
			NewSchema(map[string]*Property{
				"amount":       PositiveNumberProperty("Amount to convert"),
				"fromCurrency": StringProperty("Currency to convert from"),
				"toCurrency":   StringProperty("Currency to convert to"),
			}, "amount", "fromCurrency", "toCurrency"),
			c.convert,
		),
		NewTool("fetchTwitterDescription",
			"Fetch the public profile description for a Twitter/X handle",
			CategorySocial,
			NewSchema(map[string]*Property{
				"username": StringProperty("Handle to look up, with or without the leading @"),
			}, "username"),
			c.fetchProfile,
		),
		NewTool("displayResults",
			"Render a data series as a chart for the user",
			CategoryData,
			NewSchema(map[string]*Property{
				"chartData": ArrayProperty("Series of points to plot", ObjectProperty("One data point", map[string]*Property{
					"x": StringProperty("Point label"),
					"y": NumberProperty("Point value"),
				})),
				"title":       StringProperty("Chart title"),
				"description": StringProperty("Chart description"),
			}, "chartData"),
			c.displayResults,
		),
		NewTool("getWeather",
			"Get the current weather for a city",
			CategoryUtility,
			NewSchema(map[string]*Property{
				"city": StringProperty("City to get the weather for"),
			}, "city"),
			c.getWeather,
		),
		NewTool("getLocation",
			"Get the user's approximate location",
			CategoryUtility,
			NewSchema(map[string]*Property{}),
			c.getLocation,
		),
	}

	for _, tool := range definitions {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry builds a registry holding the canonical catalog.
func NewDefaultRegistry(c *Catalog) (*Registry, error) {
	registry := NewRegistry()
	if err := c.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
