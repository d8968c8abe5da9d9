package contacts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/synto-ai/synto/schema"
)

const (
	owner      = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	otherOwner = "4Nd1mYvNHjJcHSVGkDYgmwbQjqo7G8KzEKfWxnwZqUxe"
	address    = "7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr"
)

func services(t *testing.T) map[string]Service {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "contacts.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return map[string]Service{
		"memory": NewMemoryStore(),
		"sqlite": store,
	}
}

func TestAddAndGet(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			contact, err := svc.Add(ctx, owner, "Alice", address)
			if err != nil {
				t.Fatalf("add failed: %v", err)
			}
			if contact.ID == "" {
				t.Error("expected generated contact ID")
			}

			got, err := svc.GetByName(ctx, owner, "alice")
			if err != nil {
				t.Fatalf("case-insensitive lookup failed: %v", err)
			}
			if got.WalletAddress != address {
				t.Errorf("unexpected address: %s", got.WalletAddress)
			}
		})
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := svc.Add(ctx, owner, "Alice", address); err != nil {
				t.Fatalf("add failed: %v", err)
			}
			if _, err := svc.Add(ctx, owner, "ALICE", address); !errors.Is(err, schema.ErrContactExists) {
				t.Fatalf("expected ErrContactExists, got %v", err)
			}
		})
	}
}

func TestNamesScopedPerOwner(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := svc.Add(ctx, owner, "Alice", address); err != nil {
				t.Fatalf("add failed: %v", err)
			}
			// A different wallet can reuse the name.
			if _, err := svc.Add(ctx, otherOwner, "Alice", address); err != nil {
				t.Fatalf("cross-owner add failed: %v", err)
			}
			if _, err := svc.GetByName(ctx, otherOwner, "Bob"); !errors.Is(err, schema.ErrContactNotFound) {
				t.Fatalf("expected ErrContactNotFound, got %v", err)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := svc.Add(ctx, owner, "Al", address); err == nil {
				t.Error("two-character name should be rejected")
			}
			if _, err := svc.Add(ctx, owner, "Alice", "not-an-address"); err == nil {
				t.Error("malformed address should be rejected")
			}
			if _, err := svc.Add(ctx, owner, "Alice", "0x52908400098527886E0F7030069857D2E4169EE7"); err == nil {
				t.Error("hex address should be rejected")
			}

			var validationErr *schema.ValidationError
			_, err := svc.Add(ctx, owner, "Al", address)
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestMissIsRepeatable(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				if _, err := svc.GetByName(ctx, owner, "nobody"); !errors.Is(err, schema.ErrContactNotFound) {
					t.Fatalf("attempt %d: expected ErrContactNotFound, got %v", i, err)
				}
			}
		})
	}
}

func TestList(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc.Add(ctx, owner, "Alice", address)
			svc.Add(ctx, owner, "Bob", address)

			list, err := svc.List(ctx, owner)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("expected 2 contacts, got %d", len(list))
			}
			if list[0].Name != "Alice" {
				t.Errorf("expected oldest first, got %s", list[0].Name)
			}
		})
	}
}
