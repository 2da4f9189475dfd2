package mocks

import (
	"context"
	"strings"
)

// MockExtractor is a mock implementation of TextExtractor for testing.
// It splits input on form feed characters, one page per segment.
type MockExtractor struct {
	types    []string
	priority int
}

// NewMockExtractor creates a new MockExtractor
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{types: []string{"text/*"}, priority: 10}
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte) ([]string, error) {
	return strings.Split(string(data), "\f"), nil
}

func (m *MockExtractor) SupportedTypes() []string {
	return m.types
}

func (m *MockExtractor) Priority() int {
	return m.priority
}
