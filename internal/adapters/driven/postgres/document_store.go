package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save persists a document and its page texts in one transaction
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document, pages []string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO documents (id, owner_id, filename, mime_type, page_count, structured, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				filename = EXCLUDED.filename,
				mime_type = EXCLUDED.mime_type,
				page_count = EXCLUDED.page_count,
				structured = EXCLUDED.structured
		`
		var structured any
		if len(doc.Structured) > 0 {
			structured = []byte(doc.Structured)
		}
		_, err := tx.ExecContext(ctx, query,
			doc.ID,
			doc.OwnerID,
			doc.Filename,
			doc.MimeType,
			doc.PageCount,
			structured,
			doc.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM document_pages WHERE document_id = $1`, doc.ID); err != nil {
			return fmt.Errorf("clear pages: %w", err)
		}

		pageQuery := `
			INSERT INTO document_pages (document_id, page_number, content)
			VALUES ($1, $2, $3)
		`
		for i, content := range pages {
			if _, err := tx.ExecContext(ctx, pageQuery, doc.ID, i+1, content); err != nil {
				return fmt.Errorf("insert page %d: %w", i+1, err)
			}
		}

		return nil
	})
}

// Get retrieves a document by ID without page texts
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, mime_type, page_count, structured, created_at
		FROM documents
		WHERE id = $1
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// GetWithPages retrieves a document together with its ordered pages
func (s *DocumentStore) GetWithPages(ctx context.Context, id string) (*domain.DocumentWithPages, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT content
		FROM document_pages
		WHERE document_id = $1
		ORDER BY page_number
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	doc.FullText = domain.JoinPages(pages)

	return &domain.DocumentWithPages{Document: doc, Pages: pages}, nil
}

// List retrieves all documents, newest first
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, mime_type, page_count, structured, created_at
		FROM documents
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Delete removes a document. Pages and chat history go with it via
// ON DELETE CASCADE.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Count returns total document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var structured []byte
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Filename,
		&doc.MimeType,
		&doc.PageCount,
		&structured,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(structured) > 0 {
		doc.Structured = structured
	}
	return &doc, nil
}
