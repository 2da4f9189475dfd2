package domain

import "time"

// AIProvider names a supported embedding/LLM vendor.
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// AISettings is the persisted provider configuration. Admins change
// it over the API at runtime; the running services are swapped to
// match.
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EmbeddingSettings configures the retrieval half of the pipeline.
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured reports whether these settings can produce a client.
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	return !e.Provider.RequiresAPIKey() || e.APIKey != ""
}

// LLMSettings configures the generation half of the pipeline.
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured reports whether these settings can produce a client.
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	return !l.Provider.RequiresAPIKey() || l.APIKey != ""
}

// RequiresAPIKey reports whether the provider needs a key. Ollama is
// self-hosted and does not.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// IsValid reports whether the provider name is known.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// Validate rejects unknown providers and keyless configurations
// before anything is persisted.
func (s *AISettings) Validate() error {
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.Embedding.Provider != "" && s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return ErrInvalidInput
	}
	if s.LLM.Provider != "" && s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		return ErrInvalidInput
	}
	return nil
}
