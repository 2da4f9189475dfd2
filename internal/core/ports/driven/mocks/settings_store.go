package mocks

import (
	"context"
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockSettingsStore is a mock implementation of SettingsStore for testing
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings *domain.AISettings
}

// NewMockSettingsStore creates a new MockSettingsStore
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{}
}

func (m *MockSettingsStore) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	return m.settings, nil
}

func (m *MockSettingsStore) SaveAISettings(ctx context.Context, settings *domain.AISettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}
