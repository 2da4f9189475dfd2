package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

// MockLLMService is a scriptable mock implementation of LLMService.
// Responses are returned in order; queued errors are returned before
// queued responses, which makes rate-limit retry sequences easy to
// script (fail, fail, succeed).
type MockLLMService struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
	model     string
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{model: "mock-llm"}
}

// QueueResponse appends a canned completion
func (m *MockLLMService) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, text)
}

// QueueError appends an error to return before any queued responses
func (m *MockLLMService) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

// QueueRateLimits appends n rate-limit errors
func (m *MockLLMService) QueueRateLimits(n int) {
	for i := 0; i < n; i++ {
		m.QueueError(fmt.Errorf("%w: quota exceeded", domain.ErrRateLimited))
	}
}

func (m *MockLLMService) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	if len(m.responses) == 0 {
		return "mock answer", nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Prompts returns every prompt seen so far
func (m *MockLLMService) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none
func (m *MockLLMService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
