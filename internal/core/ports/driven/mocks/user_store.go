package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockUserStore keeps users in memory, indexed by both ID and email.
type MockUserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]*domain.User
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
	}
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byEmail, user.Email)
	delete(m.users, id)
	return nil
}

func (m *MockUserStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users), nil
}

func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}
