package driven

import "github.com/veridoc-labs/veridoc-core/internal/core/domain"

// VectorIndex is a per-document nearest-neighbour structure over chunk
// embeddings. Built exactly once per document and never mutated; a new
// document requires a new index. Concurrent searches are safe.
type VectorIndex interface {
	// Search returns up to k chunks ascending by squared L2 distance
	// to the query embedding. Fewer than k rows returns all of them;
	// an empty index returns an empty result, never an error.
	Search(query []float32, k int) []domain.ScoredChunk

	// Len returns the number of indexed chunks
	Len() int

	// Dimensions returns the embedding dimensionality of the index
	Dimensions() int
}

// VectorIndexBuilder builds an immutable index from a finalized chunk
// sequence. Every chunk must already carry an embedding of identical
// length; a mismatch is a programming error and fails the build.
type VectorIndexBuilder interface {
	Build(chunks []*domain.Chunk) (VectorIndex, error)
}
