package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven/mocks"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

// mockAssistant records WarmSession calls
type mockAssistant struct {
	mu      sync.Mutex
	warmed  []string
	warmErr error
}

func (m *mockAssistant) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssistant) Ask(ctx context.Context, documentID, question string, evaluate bool) (*domain.Answer, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssistant) Summarize(ctx context.Context, documentID string) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockAssistant) Suggest(ctx context.Context, documentID string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssistant) WarmSession(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warmed = append(m.warmed, documentID)
	return m.warmErr
}

func (m *mockAssistant) warmedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warmed...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWorkerProcessesWarmSessionTask(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	assistant := &mockAssistant{}

	w := New(Config{
		TaskQueue:      queue,
		Assistant:      assistant,
		Logger:         quietLogger(),
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewWarmSessionTask("doc-1")
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return len(queue.Acked()) == 1
	})

	warmed := assistant.warmedIDs()
	if len(warmed) != 1 || warmed[0] != "doc-1" {
		t.Errorf("warmed = %v, want [doc-1]", warmed)
	}
	if acked := queue.Acked(); len(acked) != 1 || acked[0] != task.ID {
		t.Errorf("acked = %v, want [%s]", acked, task.ID)
	}
}

func TestWorkerNacksFailedTask(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	assistant := &mockAssistant{warmErr: errors.New("embedding down")}

	w := New(Config{
		TaskQueue:      queue,
		Assistant:      assistant,
		Logger:         quietLogger(),
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewWarmSessionTask("doc-1")
	_ = queue.Enqueue(ctx, task)

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return len(queue.Nacked()) == 1
	})

	if acked := queue.Acked(); len(acked) != 0 {
		t.Errorf("expected no acks, got %v", acked)
	}
}

func TestWorkerSkipsDeletedDocument(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	assistant := &mockAssistant{warmErr: domain.ErrNotFound}

	w := New(Config{
		TaskQueue:      queue,
		Assistant:      assistant,
		Logger:         quietLogger(),
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task := domain.NewWarmSessionTask("gone")
	_ = queue.Enqueue(ctx, task)

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	// Vanished documents are acked, not retried
	waitFor(t, 2*time.Second, func() bool {
		return len(queue.Acked()) == 1
	})
	if nacked := queue.Nacked(); len(nacked) != 0 {
		t.Errorf("expected no nacks, got %v", nacked)
	}
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	w := New(Config{
		TaskQueue:      queue,
		Assistant:      &mockAssistant{},
		Logger:         quietLogger(),
		DequeueTimeout: 1,
	})

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	w.Stop()
	w.Stop() // second stop must not panic or block
}

func TestWorkerStartTwice(t *testing.T) {
	queue := mocks.NewMockTaskQueue()
	w := New(Config{
		TaskQueue:      queue,
		Assistant:      &mockAssistant{},
		Logger:         quietLogger(),
		DequeueTimeout: 1,
	})

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	w.Stop()
}
