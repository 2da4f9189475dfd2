package services

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc-core/internal/runtime"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	docStore  driven.DocumentStore
	chatStore driven.ChatStore
	sessions  *runtime.SessionRegistry
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docStore driven.DocumentStore,
	chatStore driven.ChatStore,
	sessions *runtime.SessionRegistry,
) driving.DocumentService {
	return &documentService{
		docStore:  docStore,
		chatStore: chatStore,
		sessions:  sessions,
	}
}

// Get retrieves a document by ID
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.Get(ctx, id)
}

// GetWithHistory retrieves a document and its conversation turns
func (s *documentService) GetWithHistory(ctx context.Context, id string) (*domain.Document, []domain.ConversationTurn, error) {
	doc, err := s.docStore.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	turns, err := s.chatStore.GetByDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return doc, turns, nil
}

// List retrieves all documents, newest first
func (s *documentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.docStore.List(ctx)
}

// Delete removes a document, its pages, history and live session
func (s *documentService) Delete(ctx context.Context, id string) error {
	if _, err := s.docStore.Get(ctx, id); err != nil {
		return err
	}

	if err := s.chatStore.DeleteByDocument(ctx, id); err != nil {
		return err
	}
	if err := s.docStore.Delete(ctx, id); err != nil {
		return err
	}

	s.sessions.Delete(id)
	return nil
}
