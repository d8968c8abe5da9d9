package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/synto-ai/synto/schema"
)

// Store is the sqlite-backed Repository. Messages keep their insertion
// order through a per-session sequence column.
type Store struct {
	db    *sql.DB
	mutex sync.Mutex
}

// NewStore opens (or creates) the session database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
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
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id         TEXT NOT NULL,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		tool_calls TEXT,
		metadata   TEXT,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);

	CREATE TABLE IF NOT EXISTS active_session (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		session_id TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init session schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the session and replaces its message list. The stored
// creation time survives re-saves.
func (s *Store) Save(ctx context.Context, session *ChatSession) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var existing time.Time
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM sessions WHERE id = ?`, session.ID).Scan(&existing)
	switch {
	case err == nil:
		createdAt = existing
	case err != sql.ErrNoRows:
		return fmt.Errorf("query session: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		session.ID, createdAt,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for seq, msg := range session.Messages {
		if err := insertMessage(ctx, tx, session.ID, seq, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Append adds messages after the session's current last sequence.
func (s *Store) Append(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return schema.ErrSessionNotFound
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM messages WHERE session_id = ?`, sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("query sequence: %w", err)
	}

	for i, msg := range messages {
		if err := insertMessage(ctx, tx, sessionID, next+i, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get loads a session with its messages in insertion order.
func (s *Store) Get(ctx context.Context, sessionID string) (*ChatSession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session := &ChatSession{ID: sessionID}
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM sessions WHERE id = ?`, sessionID).Scan(&session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, schema.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, tool_calls, metadata, created_at
		 FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		session.Messages = append(session.Messages, msg)
	}
	return session, rows.Err()
}

// List returns all sessions with their messages, newest session first.
func (s *Store) List(ctx context.Context) ([]*ChatSession, error) {
	s.mutex.Lock()
	ids := []string{}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		s.mutex.Unlock()
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			s.mutex.Unlock()
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	s.mutex.Unlock()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]*ChatSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Delete removes one message, or the whole session when messageID is
// empty.
func (s *Store) Delete(ctx context.Context, sessionID, messageID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return schema.ErrSessionNotFound
	}

	if messageID == "" {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin delete: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM active_session WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("clear active session: %w", err)
		}
		return tx.Commit()
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id = ? AND id = ?`, sessionID, messageID,
	)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if affected == 0 {
		return schema.ErrMessageNotFound
	}
	return nil
}

// SetActive marks the focused session.
func (s *Store) SetActive(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("query session: %w", err)
	}
	if exists == 0 {
		return schema.ErrSessionNotFound
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO active_session (id, session_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET session_id = excluded.session_id`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

// Active returns the focused session ID, or empty when none.
func (s *Store) Active(ctx context.Context) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM active_session WHERE id = 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query active session: %w", err)
	}
	return id, nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, seq int, msg *schema.Message) error {
	var toolCalls []byte
	if msg.HasToolCalls() {
		var err error
		toolCalls, err = json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("encode tool calls: %w", err)
		}
	}

	var metadata []byte
	if msg.Metadata != nil {
		var err error
		metadata, err = json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	createdAt := msg.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, role, content, tool_calls, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, sessionID, seq, string(msg.Role), msg.Content, nullable(toolCalls), nullable(metadata), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*schema.Message, error) {
	msg := &schema.Message{}
	var role string
	var toolCalls, metadata sql.NullString

	if err := row.Scan(&msg.ID, &role, &msg.Content, &toolCalls, &metadata, &msg.Timestamp); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	msg.Role = schema.Role(role)

	if toolCalls.Valid && toolCalls.String != "" {
		if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
			return nil, fmt.Errorf("decode tool calls: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &msg.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return msg, nil
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

var _ Repository = (*Store)(nil)
