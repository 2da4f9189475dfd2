package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// The ai_settings table holds a single row; API keys are stored as
// AES-256-GCM blobs.
type SettingsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *DB, encryptor *SecretEncryptor) *SettingsStore {
	return &SettingsStore{db: db, encryptor: encryptor}
}

// GetAISettings retrieves the AI configuration.
// Returns domain.ErrNotFound when none has been saved yet.
func (s *SettingsStore) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	query := `
		SELECT embedding_provider, embedding_model, embedding_api_key, embedding_base_url,
		       llm_provider, llm_model, llm_api_key, llm_base_url,
		       updated_at
		FROM ai_settings
		WHERE id = 1
	`

	var settings domain.AISettings
	var embProvider, llmProvider string
	var embKey, llmKey []byte

	err := s.db.QueryRowContext(ctx, query).Scan(
		&embProvider,
		&settings.Embedding.Model,
		&embKey,
		&settings.Embedding.BaseURL,
		&llmProvider,
		&settings.LLM.Model,
		&llmKey,
		&settings.LLM.BaseURL,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	settings.Embedding.Provider = domain.AIProvider(embProvider)
	settings.LLM.Provider = domain.AIProvider(llmProvider)

	if settings.Embedding.APIKey, err = s.decryptKey(embKey); err != nil {
		return nil, fmt.Errorf("decrypt embedding API key: %w", err)
	}
	if settings.LLM.APIKey, err = s.decryptKey(llmKey); err != nil {
		return nil, fmt.Errorf("decrypt LLM API key: %w", err)
	}

	return &settings, nil
}

// SaveAISettings persists the AI configuration
func (s *SettingsStore) SaveAISettings(ctx context.Context, settings *domain.AISettings) error {
	embKey, err := s.encryptKey(settings.Embedding.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt embedding API key: %w", err)
	}
	llmKey, err := s.encryptKey(settings.LLM.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt LLM API key: %w", err)
	}

	query := `
		INSERT INTO ai_settings (id, embedding_provider, embedding_model, embedding_api_key, embedding_base_url,
		                         llm_provider, llm_model, llm_api_key, llm_base_url, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			embedding_provider = EXCLUDED.embedding_provider,
			embedding_model = EXCLUDED.embedding_model,
			embedding_api_key = EXCLUDED.embedding_api_key,
			embedding_base_url = EXCLUDED.embedding_base_url,
			llm_provider = EXCLUDED.llm_provider,
			llm_model = EXCLUDED.llm_model,
			llm_api_key = EXCLUDED.llm_api_key,
			llm_base_url = EXCLUDED.llm_base_url,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		string(settings.Embedding.Provider),
		settings.Embedding.Model,
		embKey,
		settings.Embedding.BaseURL,
		string(settings.LLM.Provider),
		settings.LLM.Model,
		llmKey,
		settings.LLM.BaseURL,
		settings.UpdatedAt,
	)
	return err
}

func (s *SettingsStore) encryptKey(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	return s.encryptor.EncryptString(key)
}

func (s *SettingsStore) decryptKey(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	return s.encryptor.DecryptString(blob)
}
