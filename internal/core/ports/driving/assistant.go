package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// IngestRequest carries an uploaded document into the pipeline
type IngestRequest struct {
	Filename string
	MimeType string
	Data     []byte
	OwnerID  string
}

// IngestResponse describes the newly created document session
type IngestResponse struct {
	Document *domain.Document `json:"document"`
	Chunks   int              `json:"chunks"`
}

// AssistantService is the question-answering pipeline over a single
// uploaded document: ingestion, retrieval-augmented asking,
// summarisation and question suggestion.
type AssistantService interface {
	// Ingest extracts, chunks, embeds and indexes an uploaded document
	// and registers its session. An extraction with no usable text
	// fails with domain.ErrEmptyDocument and persists nothing.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error)

	// Ask answers a question against the document's index, appends the
	// turn to the conversation history and optionally grades the
	// answer. The answer is returned even when grading degrades to a
	// null evaluation.
	Ask(ctx context.Context, documentID, question string, evaluate bool) (*domain.Answer, error)

	// Summarize produces a structured summary of the whole document.
	// Single-shot generation; no retrieval is involved.
	Summarize(ctx context.Context, documentID string) (string, error)

	// Suggest proposes questions a reader would likely ask
	Suggest(ctx context.Context, documentID string) ([]string, error)

	// WarmSession rebuilds the in-memory index and history for a
	// persisted document. Used by the warm-up worker and on demand
	// after a restart.
	WarmSession(ctx context.Context, documentID string) error
}
