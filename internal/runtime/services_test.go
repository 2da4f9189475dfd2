package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

type fakeEmbedding struct {
	healthErr error
	closed    bool
}

func (f *fakeEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (f *fakeEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (f *fakeEmbedding) Dimensions() int                       { return 384 }
func (f *fakeEmbedding) Model() string                         { return "fake-embed" }
func (f *fakeEmbedding) HealthCheck(ctx context.Context) error { return f.healthErr }
func (f *fakeEmbedding) Close() error {
	f.closed = true
	return nil
}

type fakeLLM struct {
	pingErr error
	closed  bool
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) { return "", nil }
func (f *fakeLLM) Model() string                                               { return "fake-llm" }
func (f *fakeLLM) Ping(ctx context.Context) error                              { return f.pingErr }
func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

func newServices() (*Services, *domain.RuntimeConfig) {
	config := domain.NewRuntimeConfig("postgres", "postgres")
	return NewServices(config), config
}

func TestServicesStartEmpty(t *testing.T) {
	services, config := newServices()

	if services.Config() != config {
		t.Error("config not retained")
	}
	if services.EmbeddingService() != nil || services.LLMService() != nil {
		t.Error("expected no services before configuration")
	}
	if config.EmbeddingAvailable() || config.LLMAvailable() {
		t.Error("capability flags set before configuration")
	}
}

func TestSetEmbeddingService(t *testing.T) {
	services, config := newServices()
	emb := &fakeEmbedding{}

	services.SetEmbeddingService(emb)
	if services.EmbeddingService() != emb {
		t.Error("service not installed")
	}
	if !config.EmbeddingAvailable() {
		t.Error("capability flag not raised")
	}

	services.SetEmbeddingService(nil)
	if services.EmbeddingService() != nil {
		t.Error("service not cleared")
	}
	if config.EmbeddingAvailable() {
		t.Error("capability flag not lowered")
	}
	if !emb.closed {
		t.Error("cleared service not closed")
	}
}

func TestSetLLMService(t *testing.T) {
	services, config := newServices()
	llm := &fakeLLM{}

	services.SetLLMService(llm)
	if services.LLMService() != llm || !config.LLMAvailable() {
		t.Error("LLM not installed")
	}

	services.SetLLMService(nil)
	if services.LLMService() != nil || config.LLMAvailable() {
		t.Error("LLM not cleared")
	}
	if !llm.closed {
		t.Error("cleared LLM not closed")
	}
}

func TestReplaceClosesPrevious(t *testing.T) {
	services, _ := newServices()
	first := &fakeEmbedding{}
	second := &fakeEmbedding{}

	services.SetEmbeddingService(first)
	services.SetEmbeddingService(second)

	if !first.closed {
		t.Error("replaced service left open")
	}
	if second.closed {
		t.Error("current service closed")
	}
}

func TestValidateAndSetEmbedding(t *testing.T) {
	services, _ := newServices()
	ctx := context.Background()

	// A healthy client is installed
	good := &fakeEmbedding{}
	if err := services.ValidateAndSetEmbedding(ctx, good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services.EmbeddingService() != good {
		t.Error("healthy client not installed")
	}

	// An unhealthy client is rejected and the old one survives
	bad := &fakeEmbedding{healthErr: errors.New("connection refused")}
	if err := services.ValidateAndSetEmbedding(ctx, bad); err == nil {
		t.Fatal("expected validation error")
	}
	if !bad.closed {
		t.Error("rejected client not closed")
	}
	if services.EmbeddingService() != good {
		t.Error("working client was replaced by a broken one")
	}

	// nil clears without validation
	if err := services.ValidateAndSetEmbedding(ctx, nil); err != nil {
		t.Errorf("clearing: %v", err)
	}
}

func TestValidateAndSetLLM(t *testing.T) {
	services, _ := newServices()
	ctx := context.Background()

	good := &fakeLLM{}
	if err := services.ValidateAndSetLLM(ctx, good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &fakeLLM{pingErr: errors.New("no route to host")}
	if err := services.ValidateAndSetLLM(ctx, bad); err == nil {
		t.Fatal("expected validation error")
	}
	if services.LLMService() != good {
		t.Error("working client was replaced by a broken one")
	}

	if err := services.ValidateAndSetLLM(ctx, nil); err != nil {
		t.Errorf("clearing: %v", err)
	}
}

func TestClose(t *testing.T) {
	services, config := newServices()
	emb := &fakeEmbedding{}
	llm := &fakeLLM{}
	services.SetEmbeddingService(emb)
	services.SetLLMService(llm)

	if err := services.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emb.closed || !llm.closed {
		t.Error("clients not closed")
	}
	if config.EmbeddingAvailable() || config.LLMAvailable() {
		t.Error("capability flags survived Close")
	}
}
