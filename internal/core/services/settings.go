package services

import (
	"context"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc-core/internal/runtime"
)

var _ driving.SettingsService = (*settingsService)(nil)

type settingsService struct {
	settingsStore driven.SettingsStore
	aiFactory     driven.AIServiceFactory
	services      *runtime.Services
}

func NewSettingsService(
	settingsStore driven.SettingsStore,
	aiFactory driven.AIServiceFactory,
	services *runtime.Services,
) driving.SettingsService {
	return &settingsService{
		settingsStore: settingsStore,
		aiFactory:     aiFactory,
		services:      services,
	}
}

func (s *settingsService) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	return s.settingsStore.GetAISettings(ctx)
}

// UpdateAISettings persists new provider settings and hot-swaps the
// running services. A provider that fails to construct or validate is
// reported as unavailable; the save itself still succeeds.
func (s *settingsService) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	aiSettings, err := s.settingsStore.GetAISettings(ctx)
	if err != nil {
		aiSettings = &domain.AISettings{}
	}

	if req.Embedding != nil {
		aiSettings.Embedding = domain.EmbeddingSettings{
			Provider: req.Embedding.Provider,
			Model:    req.Embedding.Model,
			APIKey:   req.Embedding.APIKey,
			BaseURL:  req.Embedding.BaseURL,
		}
	}
	if req.LLM != nil {
		aiSettings.LLM = domain.LLMSettings{
			Provider: req.LLM.Provider,
			Model:    req.LLM.Model,
			APIKey:   req.LLM.APIKey,
			BaseURL:  req.LLM.BaseURL,
		}
	}

	if err := aiSettings.Validate(); err != nil {
		return nil, err
	}
	aiSettings.UpdatedAt = time.Now()

	if err := s.settingsStore.SaveAISettings(ctx, aiSettings); err != nil {
		return nil, err
	}

	return &driving.AISettingsStatus{
		Embedding: s.applyEmbedding(ctx, aiSettings.Embedding),
		LLM:       s.applyLLM(ctx, aiSettings.LLM),
	}, nil
}

// applyEmbedding swaps in the embedding client for the given settings,
// or clears it when none are configured.
func (s *settingsService) applyEmbedding(ctx context.Context, cfg domain.EmbeddingSettings) driving.AIServiceStatus {
	if !cfg.IsConfigured() {
		s.services.SetEmbeddingService(nil)
		return driving.AIServiceStatus{Available: false}
	}

	svc, err := s.aiFactory.CreateEmbeddingService(&cfg)
	if err != nil {
		return driving.AIServiceStatus{Available: false}
	}
	if err := s.services.ValidateAndSetEmbedding(ctx, svc); err != nil {
		return driving.AIServiceStatus{Available: false}
	}

	return driving.AIServiceStatus{
		Available:    true,
		Provider:     cfg.Provider,
		Model:        cfg.Model,
		EmbeddingDim: svc.Dimensions(),
	}
}

func (s *settingsService) applyLLM(ctx context.Context, cfg domain.LLMSettings) driving.AIServiceStatus {
	if !cfg.IsConfigured() {
		s.services.SetLLMService(nil)
		return driving.AIServiceStatus{Available: false}
	}

	svc, err := s.aiFactory.CreateLLMService(&cfg)
	if err != nil {
		return driving.AIServiceStatus{Available: false}
	}
	if err := s.services.ValidateAndSetLLM(ctx, svc); err != nil {
		return driving.AIServiceStatus{Available: false}
	}

	return driving.AIServiceStatus{
		Available: true,
		Provider:  cfg.Provider,
		Model:     cfg.Model,
	}
}

// GetAIStatus reports what is actually running right now, which may
// differ from the stored settings if a provider failed validation.
func (s *settingsService) GetAIStatus(ctx context.Context) (*driving.AISettingsStatus, error) {
	aiSettings, _ := s.settingsStore.GetAISettings(ctx)

	status := &driving.AISettingsStatus{}

	if embSvc := s.services.EmbeddingService(); embSvc != nil {
		status.Embedding = driving.AIServiceStatus{
			Available:    true,
			Model:        embSvc.Model(),
			EmbeddingDim: embSvc.Dimensions(),
		}
		if aiSettings != nil {
			status.Embedding.Provider = aiSettings.Embedding.Provider
		}
	}

	if llmSvc := s.services.LLMService(); llmSvc != nil {
		status.LLM = driving.AIServiceStatus{
			Available: true,
			Model:     llmSvc.Model(),
		}
		if aiSettings != nil {
			status.LLM.Provider = aiSettings.LLM.Provider
		}
	}

	return status, nil
}
