package ai

import (
	"fmt"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory builds embedding and LLM clients from stored provider
// settings.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService returns a client for the configured embedding
// provider, or (nil, nil) when no provider is configured.
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		return NewOllamaEmbedding(settings.BaseURL, settings.Model)
	case domain.AIProviderGemini:
		return nil, fmt.Errorf("%w: gemini embeddings are not supported, use openai or ollama", domain.ErrInvalidProvider)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// CreateLLMService returns a client for the configured LLM provider,
// or (nil, nil) when no provider is configured.
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return NewGeminiLLM(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOpenAI:
		return NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		return NewOllamaLLM(settings.BaseURL, settings.Model)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
