package contacts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/synto-ai/synto/schema"
)

// Store is the sqlite-backed address book. Owners are auto-created on
// first write, keyed by their wallet address.
type Store struct {
	db    *sql.DB
	mutex sync.Mutex
}

// NewStore opens (or creates) the contact database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open contact database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		created_at    TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id),
		name           TEXT NOT NULL,
		name_lower     TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		UNIQUE(user_id, name_lower)
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts(user_id);
	`
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init contact schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add saves a contact for the owning wallet. The name must be unique
// within that wallet's book, ignoring case.
func (s *Store) Add(ctx context.Context, ownerWallet, name, address string) (*Contact, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	userID, err := s.ensureUser(ctx, ownerWallet)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	var existing int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM contacts WHERE user_id = ? AND name_lower = ?`,
		userID, strings.ToLower(name),
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check contact name: %w", err)
	}
	if existing > 0 {
		return nil, schema.ErrContactExists
	}

	contact := &Contact{
		ID:            uuid.New().String(),
		Name:          name,
		WalletAddress: address,
		Added:         time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, user_id, name, name_lower, wallet_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		contact.ID, userID, contact.Name, strings.ToLower(contact.Name), contact.WalletAddress, contact.Added,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return contact, nil
}

// GetByName looks a contact up by name within the owning wallet's book,
// ignoring case.
func (s *Store) GetByName(ctx context.Context, ownerWallet, name string) (*Contact, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	contact := &Contact{}
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.name, c.wallet_address, c.created_at
		 FROM contacts c JOIN users u ON c.user_id = u.id
		 WHERE u.wallet_address = ? AND c.name_lower = ?`,
		ownerWallet, strings.ToLower(strings.TrimSpace(name)),
	).Scan(&contact.ID, &contact.Name, &contact.WalletAddress, &contact.Added)
	if err == sql.ErrNoRows {
		return nil, schema.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return contact, nil
}

// List returns every contact in the owning wallet's book, oldest first.
func (s *Store) List(ctx context.Context, ownerWallet string) ([]*Contact, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.wallet_address, c.created_at
		 FROM contacts c JOIN users u ON c.user_id = u.id
		 WHERE u.wallet_address = ?
		 ORDER BY c.created_at ASC`,
		ownerWallet,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		contact := &Contact{}
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.WalletAddress, &contact.Added); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (s *Store) ensureUser(ctx context.Context, wallet string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE wallet_address = ?`, wallet,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("query user: %w", err)
	}

	id = uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, wallet_address, created_at) VALUES (?, ?, ?)`,
		id, wallet, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

var _ Service = (*Store)(nil)
