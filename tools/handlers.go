package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/synto-ai/synto/schema"
)

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func numberArg(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (c *Catalog) checkBalance(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	if env.WalletAddress == "" {
		return schema.NewErrorResultf("Wallet address is required to check portfolio"), nil
	}

	symbol := strings.ToUpper(stringArg(args, "address"))
	balances, err := c.Balances.Balances(ctx, env.WalletAddress)
	if err != nil {
		return schema.NewErrorResultf("Failed to fetch balance: " + err.Error()), nil
	}

	balance := balances[symbol]
	return schema.NewSuccessResult(
		map[string]interface{}{
			"symbol":  symbol,
			"balance": balance,
			"wallet":  env.WalletAddress,
		},
		fmt.Sprintf("Your %s balance is %g", symbol, balance),
	), nil
}

func (c *Catalog) checkPortfolio(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	if env.WalletAddress == "" {
		return schema.NewErrorResultf("Wallet address is required to check portfolio"), nil
	}

	balances, err := c.Balances.Balances(ctx, env.WalletAddress)
	if err != nil {
		return schema.NewErrorResultf("Failed to fetch portfolio: " + err.Error()), nil
	}

	return schema.NewSuccessResult(
		map[string]interface{}{
			"wallet":   env.WalletAddress,
			"balances": balances,
		},
		"Portfolio retrieved successfully",
	), nil
}

func (c *Catalog) addContact(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	if env.WalletAddress == "" {
		return schema.NewErrorResultf("Wallet connection required to manage contacts"), nil
	}

	name := stringArg(args, "name")
	address := stringArg(args, "address")
	contact, err := c.Contacts.Add(ctx, env.WalletAddress, name, address)
	if err != nil {
		if err == schema.ErrContactExists {
			return schema.NewErrorResultf("A contact with this name already exists"), nil
		}
		return schema.NewErrorResult(err), nil
	}

	return schema.NewSuccessResult(
		contact,
		fmt.Sprintf("Contact %s added successfully", contact.Name),
	), nil
}

func (c *Catalog) getContact(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	if env.WalletAddress == "" {
		return schema.NewErrorResultf("Wallet connection required to manage contacts"), nil
	}

	name := stringArg(args, "name")
	contact, err := c.Contacts.GetByName(ctx, env.WalletAddress, name)
	if err != nil {
		if err == schema.ErrContactNotFound {
			return schema.NewErrorResultf(fmt.Sprintf("No contact found with name %s", name)), nil
		}
		return schema.NewErrorResult(err), nil
	}

	return schema.NewSuccessResult(
		contact,
		fmt.Sprintf("Found contact %s", contact.Name),
	), nil
}

func (c *Catalog) convert(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	amount := numberArg(args, "amount")
	from := strings.ToUpper(stringArg(args, "fromCurrency"))
	to := strings.ToUpper(stringArg(args, "toCurrency"))

	rate, err := c.Prices.Rate(ctx, from, to)
	if err != nil {
		return schema.NewErrorResultf("Failed to fetch conversion rate: " + err.Error()), nil
	}

	converted := amount * rate
	return schema.NewSuccessResult(
		map[string]interface{}{
			"amount":          amount,
			"fromCurrency":    from,
			"toCurrency":      to,
			"rate":            rate,
			"convertedAmount": converted,
		},
		fmt.Sprintf("%g %s is %g %s", amount, from, converted, to),
	), nil
}

func (c *Catalog) fetchProfile(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	username := stringArg(args, "username")
	description, err := c.Profiles.Description(ctx, username)
	if err != nil {
		return schema.NewErrorResultf("Failed to fetch profile: " + err.Error()), nil
	}

	return schema.NewSuccessResult(
		map[string]interface{}{
			"username":    strings.TrimPrefix(username, "@"),
			"description": description,
		},
		fmt.Sprintf("Fetched profile description for %s", username),
	), nil
}

// displayResults echoes the chart payload back so the renderer can draw
// it; the model supplies the series, the tool only validates shape.
func (c *Catalog) displayResults(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	return schema.NewSuccessResult(
		map[string]interface{}{
			"chartData":   args["chartData"],
			"title":       args["title"],
			"description": args["description"],
		},
		"Results ready for display",
	), nil
}

func (c *Catalog) getWeather(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	city := stringArg(args, "city")
	return schema.NewSuccessResult(
		map[string]interface{}{
			"city":        city,
			"temperature": 22,
			"unit":        "celsius",
			"condition":   "partly cloudy",
			"humidity":    55,
		},
		fmt.Sprintf("Current weather in %s: 22°C, partly cloudy", city),
	), nil
}

func (c *Catalog) getLocation(ctx context.Context, env Env, args map[string]interface{}) (*schema.ToolResult, error) {
	return schema.NewSuccessResult(
		map[string]interface{}{
			"city":      "Lisbon",
			"country":   "Portugal",
			"timezone":  "Europe/Lisbon",
			"localTime": time.Now().UTC().Format(time.RFC3339),
		},
		"Location resolved",
	), nil
}
