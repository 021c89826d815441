package wizard

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("wizard: session not found")

// Session is a server-held wizard selection. It never represents an
// appointment.
type Session struct {
	ID        string    `json:"id"`
	Selection Selection `json:"selection"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory with a TTL.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store. A non-positive ttl disables
// expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errors.New("wizard: session id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{session: *session}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.sessions[session.ID] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
