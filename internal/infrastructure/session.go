package infrastructure

import (
	"context"
	"sync"

	"regbot/internal/entities"
)

// MemorySessionStore keeps dialogue sessions in process memory.
// Sessions are lost on restart.
type MemorySessionStore struct {
	sessions map[int64]entities.Session
	mu       sync.RWMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]entities.Session),
	}
}

// Get returns a copy of the stored session, or nil.
func (m *MemorySessionStore) Get(_ context.Context, userID int64) (*entities.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *entities.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = *s
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len reports the number of live sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
