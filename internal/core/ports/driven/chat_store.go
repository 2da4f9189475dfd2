package driven

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// ChatStore persists per-document conversation history (PostgreSQL).
// Messages are stored as role/message rows and paired into turns on
// load; this core only ever appends.
type ChatStore interface {
	// AppendTurn persists one completed question/answer exchange
	AppendTurn(ctx context.Context, documentID string, turn domain.ConversationTurn) error

	// GetByDocument retrieves the full turn history in order
	GetByDocument(ctx context.Context, documentID string) ([]domain.ConversationTurn, error)

	// DeleteByDocument removes the history for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}
