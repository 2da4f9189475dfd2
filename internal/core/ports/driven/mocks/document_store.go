package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	pages     map[string][]string
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
		pages:     make(map[string][]string),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document, pages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = doc
	m.pages[doc.ID] = append([]string(nil), pages...)
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) GetWithPages(ctx context.Context, id string) (*domain.DocumentWithPages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.DocumentWithPages{
		Document: doc,
		Pages:    append([]string(nil), m.pages[id]...),
	}, nil
}

func (m *MockDocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*domain.Document, 0, len(m.documents))
	for _, d := range m.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	delete(m.pages, id)
	return nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents), nil
}
