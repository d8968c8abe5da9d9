package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/synto-ai/synto/schema"
)

// MemoryRepository keeps sessions in process memory. Reads return deep
// copies so callers never alias stored messages.
type MemoryRepository struct {
	mutex    sync.RWMutex
	sessions map[string]*ChatSession
	active   string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*ChatSession),
	}
}

// Save upserts the session. An existing session keeps its original
// creation time.
func (r *MemoryRepository) Save(ctx context.Context, session *ChatSession) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	clone := session.Clone()
	if existing, ok := r.sessions[session.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	r.sessions[session.ID] = clone
	return nil
}

// Append adds messages to an existing session.
func (r *MemoryRepository) Append(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return schema.ErrSessionNotFound
	}
	for _, msg := range messages {
		session.Messages = append(session.Messages, msg.Clone())
	}
	return nil
}

// Get returns a deep copy of the session.
func (r *MemoryRepository) Get(ctx context.Context, sessionID string) (*ChatSession, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, schema.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// List returns all sessions, newest first.
func (r *MemoryRepository) List(ctx context.Context) ([]*ChatSession, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*ChatSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session.Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Delete removes one message, or the whole session when messageID is
// empty. Deleting the active session clears the active pointer.
func (r *MemoryRepository) Delete(ctx context.Context, sessionID, messageID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return schema.ErrSessionNotFound
	}

	if messageID == "" {
		delete(r.sessions, sessionID)
		if r.active == sessionID {
			r.active = ""
		}
		return nil
	}

	for i, msg := range session.Messages {
		if msg.ID == messageID {
			session.Messages = append(session.Messages[:i], session.Messages[i+1:]...)
			return nil
		}
	}
	return schema.ErrMessageNotFound
}

// SetActive marks the focused session.
func (r *MemoryRepository) SetActive(ctx context.Context, sessionID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return schema.ErrSessionNotFound
	}
	r.active = sessionID
	return nil
}

// Active returns the focused session ID.
func (r *MemoryRepository) Active(ctx context.Context) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.active, nil
}

var _ Repository = (*MemoryRepository)(nil)
