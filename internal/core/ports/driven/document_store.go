package driven

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL).
// Pages are stored alongside the document so the in-memory index can
// be rebuilt after a restart.
type DocumentStore interface {
	// Save persists a document together with its ordered page texts
	Save(ctx context.Context, doc *domain.Document, pages []string) error

	// Get retrieves a document by ID (without full text)
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetWithPages retrieves a document including its page texts
	GetWithPages(ctx context.Context, id string) (*domain.DocumentWithPages, error)

	// List retrieves all documents, newest first
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete deletes a document and its pages and chat history
	Delete(ctx context.Context, id string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)
}
