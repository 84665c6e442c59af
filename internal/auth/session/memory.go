package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a fully stateful in-process Store. It backs unit tests
// and single-node deployments without Redis. The map has no native TTL,
// so expiry is enforced lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session

	// now is the clock used for expiry checks, overridable in tests.
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, data Session, ttl time.Duration) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	if data.ExpiresAt.IsZero() {
		data.ExpiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.sessions[id] = data
	m.mu.Unlock()

	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	// Expired-but-present records count as absent; purge opportunistically.
	if !m.now().Before(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, nil
	}

	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) ListForUser(_ context.Context, userID string) ([]Summary, error) {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Summary
	for id, s := range m.sessions {
		if s.UserID == userID && now.Before(s.ExpiresAt) {
			out = append(out, Summary{SessionID: id, Session: s})
		}
	}
	return out, nil
}

// SetClock overrides the expiry clock. Test hook.
func (m *MemoryStore) SetClock(now func() time.Time) { m.now = now }
