// Command synto runs the wallet assistant as an interactive terminal
// chat. Wallet actions pause for an explicit y/N confirmation before
// anything is submitted.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/synto-ai/synto/chain"
	"github.com/synto-ai/synto/config"
	"github.com/synto-ai/synto/contacts"
	"github.com/synto-ai/synto/observer"
	"github.com/synto-ai/synto/runner"
	"github.com/synto-ai/synto/schema"
	"github.com/synto-ai/synto/session"
	"github.com/synto-ai/synto/tools"
	"github.com/synto-ai/synto/wallet"
)

const systemPrompt = `You are Synto, a crypto wallet assistant. You help the user manage
their wallet, check balances, save contacts, and trade tokens. Use the
available tools whenever they apply. Wallet actions always require the
user's explicit confirmation; never claim a transaction happened unless
its tool result says so.`

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	balancer, quoter, submitter, prices := buildChain(cfg)

	contactService, err := buildContacts(cfg)
	if err != nil {
		return err
	}

	var profiles tools.ProfileFetcher = tools.NewWebProfileFetcher(cfg.ProfileBaseURL)
	if cfg.DemoMode {
		profiles = tools.MockProfileFetcher{}
	}

	catalog := &tools.Catalog{
		Contacts: contactService,
		Balances: balancer,
		Prices:   prices,
		Profiles: profiles,
	}
	registry, err := tools.NewDefaultRegistry(catalog)
	if err != nil {
		return err
	}

	sessions, err := buildSessions(cfg)
	if err != nil {
		return err
	}

	model, err := cfg.NewModel()
	if err != nil {
		return err
	}

	confirmations := wallet.NewManager(quoter, submitter)
	r, err := runner.New(runner.Config{
		Model:         model,
		Toolbox:       tools.NewToolbox(registry),
		Executor:      tools.NewExecutor(registry),
		Confirmations: confirmations,
		Sessions:      sessions,
		Observer:      observer.NewZapObserver(logger),
		SystemPrompt:  systemPrompt,
		Env:           tools.Env{WalletAddress: cfg.WalletAddress},
	})
	if err != nil {
		return err
	}

	return repl(r, registry, logger)
}

func repl(r *runner.Runner, registry *tools.Registry, logger *zap.Logger) error {
	ctx := context.Background()
	renderer := runner.NewRenderer(registry)
	scanner := bufio.NewScanner(os.Stdin)
	sessionID := session.NewChatSession().ID

	fmt.Println("Synto wallet assistant. /new starts a fresh chat, /quit exits.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			return nil
		case "/new":
			sessionID = session.NewChatSession().ID
			fmt.Println("started a new chat")
			continue
		}

		events, err := r.RunStream(ctx, sessionID, input)
		if err != nil {
			logger.Error("run", zap.Error(err))
			continue
		}

		for event := range events {
			switch event.Type {
			case schema.EventConfirmation:
				confirmation, ok := event.Data.(*wallet.Confirmation)
				if !ok {
					continue
				}
				decide(ctx, r, scanner, confirmation)

			case schema.EventToolCall, schema.EventToolResult:
				if inv, ok := event.Data.(schema.ToolInvocation); ok {
					view := renderer.Render(inv)
					fmt.Printf("  [%s] %s\n", view.Category, view.Label)
				}

			case schema.EventMessage:
				if msg, ok := event.Data.(*schema.Message); ok {
					fmt.Println(msg.Content)
				}

			case schema.EventError:
				logger.Error("turn failed", zap.Error(event.Error))
			}
		}
	}
}

func decide(ctx context.Context, r *runner.Runner, scanner *bufio.Scanner, confirmation *wallet.Confirmation) {
	fmt.Printf("  confirm %s? [y/N] ", confirmation.Summary())
	answer := ""
	if scanner.Scan() {
		answer = strings.ToLower(strings.TrimSpace(scanner.Text()))
	}

	var err error
	if answer == "y" || answer == "yes" {
		_, err = r.Confirmations().Confirm(ctx, confirmation.ID)
	} else {
		_, err = r.Confirmations().Reject(confirmation.ID)
	}
	if err != nil {
		fmt.Printf("  confirmation error: %v\n", err)
	}
}

func buildChain(cfg *config.Config) (chain.Balancer, chain.Quoter, chain.Submitter, chain.PriceSource) {
	if cfg.DemoMode || cfg.RPCURL == "" {
		balancer := chain.NewMockBalancer()
		if cfg.WalletAddress != "" {
			balancer.SetBalance(cfg.WalletAddress, chain.NativeSymbol, 12.5)
			balancer.SetBalance(cfg.WalletAddress, "USDC", 250)
		}
		return balancer, chain.NewMockQuoter(), chain.NewMockSubmitter(), chain.NewMockPriceSource()
	}

	rpc := chain.NewRPCClient(cfg.RPCURL)
	var quoter chain.Quoter = chain.NewMockQuoter()
	if cfg.QuoteURL != "" {
		quoter = chain.NewQuoteClient(cfg.QuoteURL)
	}
	var prices chain.PriceSource = chain.NewMockPriceSource()
	if cfg.PriceURL != "" {
		prices = chain.NewPriceClient(cfg.PriceURL, cfg.PriceAPIKey)
	}
	return rpc, quoter, rpc, prices
}

func buildContacts(cfg *config.Config) (contacts.Service, error) {
	if cfg.DemoMode {
		return contacts.NewMemoryStore(), nil
	}
	return contacts.NewStore(cfg.ContactDBPath)
}

func buildSessions(cfg *config.Config) (session.Repository, error) {
	if cfg.DemoMode {
		return session.NewMemoryRepository(), nil
	}
	return session.NewStore(cfg.SessionDBPath)
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
