package mocks

import (
	"context"
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockChatStore is a mock implementation of ChatStore for testing
type MockChatStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.ConversationTurn
}

// NewMockChatStore creates a new MockChatStore
func NewMockChatStore() *MockChatStore {
	return &MockChatStore{
		turns: make(map[string][]domain.ConversationTurn),
	}
}

func (m *MockChatStore) AppendTurn(ctx context.Context, documentID string, turn domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[documentID] = append(m.turns[documentID], turn)
	return nil
}

func (m *MockChatStore) GetByDocument(ctx context.Context, documentID string) ([]domain.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ConversationTurn(nil), m.turns[documentID]...), nil
}

func (m *MockChatStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, documentID)
	return nil
}
