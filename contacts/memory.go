package contacts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/synto-ai/synto/schema"
)

// MemoryStore is the in-memory Service used in demo mode and tests.
type MemoryStore struct {
	mutex sync.RWMutex
	books map[string][]*Contact
}

// NewMemoryStore creates an empty in-memory address book.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string][]*Contact),
	}
}

// Add saves a contact, enforcing per-wallet case-insensitive name
// uniqueness.
func (s *MemoryStore) Add(ctx context.Context, ownerWallet, name, address string) (*Contact, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = strings.TrimSpace(name)
	for _, existing := range s.books[ownerWallet] {
		if strings.EqualFold(existing.Name, name) {
			return nil, schema.ErrContactExists
		}
	}

	contact := &Contact{
		ID:            uuid.New().String(),
		Name:          name,
		WalletAddress: address,
		Added:         time.Now().UTC(),
	}
	s.books[ownerWallet] = append(s.books[ownerWallet], contact)
	return contact, nil
}

// GetByName looks a contact up case-insensitively.
func (s *MemoryStore) GetByName(ctx context.Context, ownerWallet, name string) (*Contact, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	name = strings.TrimSpace(name)
	for _, contact := range s.books[ownerWallet] {
		if strings.EqualFold(contact.Name, name) {
			clone := *contact
			return &clone, nil
		}
	}
	return nil, schema.ErrContactNotFound
}

// List returns the wallet's contacts, oldest first.
func (s *MemoryStore) List(ctx context.Context, ownerWallet string) ([]*Contact, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	contacts := make([]*Contact, 0, len(s.books[ownerWallet]))
	for _, contact := range s.books[ownerWallet] {
		clone := *contact
		contacts = append(contacts, &clone)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].Added.Before(contacts[j].Added)
	})
	return contacts, nil
}

var _ Service = (*MemoryStore)(nil)
