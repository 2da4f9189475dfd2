package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// DocumentService provides access to stored documents
type DocumentService interface {
	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetWithHistory retrieves a document and its conversation turns
	GetWithHistory(ctx context.Context, id string) (*domain.Document, []domain.ConversationTurn, error)

	// List retrieves all documents, newest first
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete removes a document, its pages, history and live session
	Delete(ctx context.Context, id string) error
}
