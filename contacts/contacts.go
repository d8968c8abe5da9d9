// Package contacts manages each wallet's saved recipient address book.
package contacts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/synto-ai/synto/schema"
)

// MinNameLength is the shortest accepted contact name.
const MinNameLength = 3

// Base58-encoded ed25519 public keys are 32 to 44 characters.
var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// Contact is one saved recipient owned by a wallet.
type Contact struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"walletAddress"`
	Added         time.Time `json:"addedAt"`
}

// Service is the address book contract. Names are unique per owning
// wallet, compared case-insensitively.
type Service interface {
	Add(ctx context.Context, ownerWallet, name, address string) (*Contact, error)
	GetByName(ctx context.Context, ownerWallet, name string) (*Contact, error)
	List(ctx context.Context, ownerWallet string) ([]*Contact, error)
}

// ValidateName checks a contact name.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < MinNameLength {
		return schema.NewValidationError("name", name, "contact name must be at least 3 characters")
	}
	return nil
}

// ValidateAddress checks a recipient wallet address.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return schema.NewValidationError("walletAddress", address, "invalid wallet address format")
	}
	return nil
}
