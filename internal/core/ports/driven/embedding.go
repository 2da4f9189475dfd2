package driven

import (
	"context"
)

// EmbeddingService turns text into vectors.
type EmbeddingService interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single question. It must use the same model
	// as Embed: chunk and query vectors share one metric space.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions is the width of vectors this service produces.
	Dimensions() int

	// Model names the underlying embedding model.
	Model() string

	// HealthCheck verifies connectivity and credentials.
	HealthCheck(ctx context.Context) error

	Close() error
}
