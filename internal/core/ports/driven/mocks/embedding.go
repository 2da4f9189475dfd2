package mocks

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockEmbeddingService produces deterministic vectors without calling
// any provider, so retrieval behaviour is testable offline.
type MockEmbeddingService struct {
	dimensions int
	model      string
	failNext   bool
	calls      int
}

func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 384,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.failNext {
		m.failNext = false
		return nil, domain.ErrEmbeddingFailure
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.calls++
	if m.failNext {
		m.failNext = false
		return nil, domain.ErrEmbeddingFailure
	}
	return m.generateEmbedding(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// generateEmbedding produces a deterministic bag-of-words vector: each
// word is hashed to a dimension and counted. Texts that share words
// land close together, so retrieval tests can assert relevance.
func (m *MockEmbeddingService) generateEmbedding(text string) []float32 {
	embedding := make([]float32, m.dimensions)

	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		embedding[int(h.Sum32())%m.dimensions]++
	}

	// Normalise by word count so long chunks are comparable to queries
	if n := float32(len(words)); n > 0 {
		for i := range embedding {
			embedding[i] /= n
		}
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbeddingService) SetFailNext(fail bool) {
	m.failNext = fail
}

func (m *MockEmbeddingService) SetDimensions(dim int) {
	m.dimensions = dim
}

func (m *MockEmbeddingService) Calls() int {
	return m.calls
}
