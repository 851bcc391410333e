package conversation

import (
	"context"
	"sync"
	"time"

	"interview-bot/internal/questions"
)

// Session is the dialogue state of one user.
// Question is the question awaiting an answer, nil when idle.
type Session struct {
	State     State               `json:"state"`
	Question  *questions.Question `json:"question,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func idleSession() Session {
	return Session{State: StateIdle}
}

// SessionStore keeps one session per identity.
// Load returns an idle session for unknown or expired identities.
type SessionStore interface {
	Load(ctx context.Context, id int64) (Session, error)
	Save(ctx context.Context, id int64, s Session) error
	Delete(ctx context.Context, id int64) error
}

// MemoryStore is a process-local SessionStore. Sessions not saved within ttl expire.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id int64) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return idleSession(), nil
	}
	if m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return idleSession(), nil
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, id int64, s Session) error {
	s.UpdatedAt = m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len is the number of stored (possibly expired) sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
