package domain

import "sync"

// RuntimeConfig tracks which capabilities are live. The backends are
// fixed at startup; the AI flags flip whenever an admin swaps
// providers. Safe for concurrent use.
type RuntimeConfig struct {
	mu sync.RWMutex

	SessionBackend string // "redis" or "postgres"
	QueueBackend   string // "redis" or "postgres"

	embeddingAvailable bool
	llmAvailable       bool
}

func NewRuntimeConfig(sessionBackend, queueBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
		QueueBackend:   queueBackend,
	}
}

func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanIngest reports whether new documents can be indexed right now.
func (c *RuntimeConfig) CanIngest() bool {
	return c.EmbeddingAvailable()
}

// CanAnswer reports whether the full question pipeline is available.
// Answering needs both halves: embeddings for retrieval and an LLM for
// generation.
func (c *RuntimeConfig) CanAnswer() bool {
	return c.EmbeddingAvailable() && c.LLMAvailable()
}
