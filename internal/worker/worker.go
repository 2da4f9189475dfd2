package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driving"
)

// Worker drains the task queue. Its only task type today is warming
// document sessions after a restart so the first question does not
// pay re-embedding latency.
type Worker struct {
	taskQueue driven.TaskQueue
	assistant driving.AssistantService
	logger    *slog.Logger

	concurrency    int
	dequeueTimeout int // seconds

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue driven.TaskQueue
	Assistant driving.AssistantService
	Logger    *slog.Logger

	// Concurrency is the number of goroutines draining the queue
	Concurrency int

	// DequeueTimeout is how long (seconds) one dequeue call blocks
	DequeueTimeout int
}

// New creates a new task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 5
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		assistant:      cfg.Assistant,
		logger:         logger,
		concurrency:    cfg.Concurrency,
		dequeueTimeout: cfg.DequeueTimeout,
	}
}

// Start launches the processing goroutines. It returns immediately;
// use Stop or cancel the context to shut down. Calling Start on a
// running worker is a no-op.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.drain(ctx, id)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop signals the goroutines and blocks until they finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// drain is one goroutine's dequeue-process loop.
func (w *Worker) drain(ctx context.Context, id int) {
	logger := w.logger.With("worker_id", id)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("dequeue failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		w.process(ctx, task, logger)
	}
}

// process runs one task and acks or nacks it by outcome.
func (w *Worker) process(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "document_id", task.DocumentID)
	logger.Info("processing task")

	start := time.Now()
	var err error
	switch task.Type {
	case domain.TaskTypeWarmSession:
		err = w.warmSession(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	if err != nil {
		logger.Error("task failed", "duration", time.Since(start), "error", err)
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("nack failed", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", time.Since(start))
	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("ack failed", "ack_error", ackErr)
	}
}

// warmSession rebuilds one document's in-memory session.
func (w *Worker) warmSession(ctx context.Context, task *domain.Task) error {
	if task.DocumentID == "" {
		return fmt.Errorf("document_id not set in task")
	}

	// A document deleted after enqueueing is not a failure
	err := w.assistant.WarmSession(ctx, task.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		w.logger.Info("skipping warm-up for deleted document", "document_id", task.DocumentID)
		return nil
	}
	return err
}
