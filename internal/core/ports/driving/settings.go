package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// UpdateAISettingsRequest updates provider configuration. Nil halves
// are left untouched, so embedding and LLM can be changed
// independently.
type UpdateAISettingsRequest struct {
	Embedding *EmbeddingSettingsInput `json:"embedding,omitempty"`
	LLM       *LLMSettingsInput       `json:"llm,omitempty"`
}

type EmbeddingSettingsInput struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

type LLMSettingsInput struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

// AIServiceStatus reports one service's availability.
type AIServiceStatus struct {
	Available    bool              `json:"available"`
	Provider     domain.AIProvider `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	EmbeddingDim int               `json:"embedding_dim,omitempty"`
}

// AISettingsStatus pairs the two service statuses.
type AISettingsStatus struct {
	Embedding AIServiceStatus `json:"embedding"`
	LLM       AIServiceStatus `json:"llm"`
}

// SettingsService manages AI provider configuration.
type SettingsService interface {
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// UpdateAISettings saves new settings and hot-swaps the running
	// services, reporting which are now available.
	UpdateAISettings(ctx context.Context, req UpdateAISettingsRequest) (*AISettingsStatus, error)

	// GetAIStatus reports what is live right now.
	GetAIStatus(ctx context.Context) (*AISettingsStatus, error)
}
