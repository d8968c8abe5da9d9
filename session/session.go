// Package session stores chat transcripts. A Repository owns the
// sessions, their ordered messages, and the active-session pointer.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/synto-ai/synto/schema"
)

// ChatSession is one conversation transcript.
type ChatSession struct {
	ID        string            `json:"id"`
	Messages  []*schema.Message `json:"messages"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewChatSession creates an empty session with a fresh ID.
func NewChatSession() *ChatSession {
	return &ChatSession{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
}

// Clone deep-copies the session so callers cannot mutate stored state.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Messages:  make([]*schema.Message, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}

// Repository is the session persistence contract. Message order within
// a session is insertion order and survives round trips.
type Repository interface {
	// Save upserts the session with its full message list. The stored
	// creation time survives re-saves.
	Save(ctx context.Context, session *ChatSession) error

	// Append adds messages to the end of an existing session.
	Append(ctx context.Context, sessionID string, messages ...*schema.Message) error

	// Get returns a session by ID, or schema.ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*ChatSession, error)

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]*ChatSession, error)

	// Delete removes one message when messageID is non-empty, otherwise
	// the whole session.
	Delete(ctx context.Context, sessionID, messageID string) error

	// SetActive marks the session the UI is focused on.
	SetActive(ctx context.Context, sessionID string) error

	// Active returns the focused session ID, or empty when none.
	Active(ctx context.Context) (string, error)
}
