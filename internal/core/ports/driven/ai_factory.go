package driven

import (
	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// AIServiceFactory turns stored provider settings into live clients.
// Both methods return (nil, nil) when the settings are not configured,
// so callers can treat an unset provider as "feature off" rather than
// an error.
type AIServiceFactory interface {
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)
}
