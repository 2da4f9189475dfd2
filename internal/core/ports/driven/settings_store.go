package driven

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// SettingsStore persists AI settings (PostgreSQL, API keys encrypted)
type SettingsStore interface {
	// GetAISettings retrieves the AI configuration.
	// Returns domain.ErrNotFound when none has been saved yet.
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// SaveAISettings persists the AI configuration
	SaveAISettings(ctx context.Context, settings *domain.AISettings) error
}
