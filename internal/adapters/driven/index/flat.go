// Package index provides an in-process flat vector index with exact
// nearest-neighbour search. Documents here are small enough that a
// brute-force scan beats the operational cost of an external engine.
package index

import (
	"fmt"
	"sort"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.VectorIndex        = (*FlatIndex)(nil)
	_ driven.VectorIndexBuilder = (*FlatBuilder)(nil)
)

// FlatIndex holds chunk embeddings and scans them all on every search.
// Immutable after Build, so searches need no locking.
type FlatIndex struct {
	chunks []*domain.Chunk
	dims   int
}

// FlatBuilder builds FlatIndex instances.
type FlatBuilder struct{}

// NewBuilder creates a flat index builder.
func NewBuilder() *FlatBuilder {
	return &FlatBuilder{}
}

// Build validates that every chunk carries an embedding of identical
// length and freezes the set into an index.
func (b *FlatBuilder) Build(chunks []*domain.Chunk) (driven.VectorIndex, error) {
	if len(chunks) == 0 {
		return &FlatIndex{}, nil
	}

	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return nil, fmt.Errorf("chunk %d has no embedding", chunks[0].ID)
	}
	for _, ch := range chunks {
		if len(ch.Embedding) != dims {
			return nil, fmt.Errorf("chunk %d embedding has %d dimensions, index has %d",
				ch.ID, len(ch.Embedding), dims)
		}
	}

	indexed := make([]*domain.Chunk, len(chunks))
	copy(indexed, chunks)

	return &FlatIndex{chunks: indexed, dims: dims}, nil
}

// Search returns up to k chunks ascending by squared L2 distance.
// Ties keep chunk order so repeated searches are deterministic.
func (idx *FlatIndex) Search(query []float32, k int) []domain.ScoredChunk {
	if len(idx.chunks) == 0 || k <= 0 || len(query) != idx.dims {
		return nil
	}

	scored := make([]domain.ScoredChunk, len(idx.chunks))
	for i, ch := range idx.chunks {
		scored[i] = domain.ScoredChunk{
			Chunk:    ch,
			Distance: squaredL2(query, ch.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Len returns the number of indexed chunks.
func (idx *FlatIndex) Len() int {
	return len(idx.chunks)
}

// Dimensions returns the embedding dimensionality of the index.
func (idx *FlatIndex) Dimensions() int {
	return idx.dims
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
