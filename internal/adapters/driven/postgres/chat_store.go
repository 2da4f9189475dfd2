package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore implements driven.ChatStore using PostgreSQL.
// Each turn is stored as a user row followed by an assistant row;
// GetByDocument pairs them back up in seq order.
type ChatStore struct {
	db *DB
}

// NewChatStore creates a new ChatStore
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// AppendTurn persists one question/answer exchange
func (s *ChatStore) AppendTurn(ctx context.Context, documentID string, turn domain.ConversationTurn) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chat_messages (document_id, role, message, created_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, documentID, "user", turn.Question, turn.CreatedAt); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, documentID, "assistant", turn.Answer, turn.CreatedAt); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
		return nil
	})
}

// GetByDocument retrieves the full turn history in order
func (s *ChatStore) GetByDocument(ctx context.Context, documentID string) ([]domain.ConversationTurn, error) {
	query := `
		SELECT role, message, created_at
		FROM chat_messages
		WHERE document_id = $1
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	var pending *domain.ConversationTurn
	for rows.Next() {
		var role, message string
		var createdAt sql.NullTime
		if err := rows.Scan(&role, &message, &createdAt); err != nil {
			return nil, err
		}

		switch role {
		case "user":
			// An unanswered question is dropped; turns are only
			// persisted complete, so this covers partial writes.
			pending = &domain.ConversationTurn{
				Question:  message,
				CreatedAt: createdAt.Time,
			}
		case "assistant":
			if pending == nil {
				continue
			}
			pending.Answer = message
			turns = append(turns, *pending)
			pending = nil
		}
	}

	return turns, rows.Err()
}

// DeleteByDocument removes the history for a document
func (s *ChatStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE document_id = $1`, documentID)
	return err
}
