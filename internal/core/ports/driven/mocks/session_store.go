package mocks

import (
	"context"
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockSessionStore keeps sessions in memory, indexed by ID and by
// refresh token.
type MockSessionStore struct {
	mu             sync.RWMutex
	sessions       map[string]*domain.Session
	byRefreshToken map[string]*domain.Session
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions:       map[string]*domain.Session{},
		byRefreshToken: map[string]*domain.Session{},
	}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
	if session.RefreshToken != "" {
		m.byRefreshToken[session.RefreshToken] = session
	}
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[id]; ok {
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.byRefreshToken[refreshToken]; ok {
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		delete(m.byRefreshToken, session.RefreshToken)
		delete(m.sessions, id)
	}
	return nil
}

func (m *MockSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.byRefreshToken, session.RefreshToken)
			delete(m.sessions, id)
		}
	}
	return nil
}
