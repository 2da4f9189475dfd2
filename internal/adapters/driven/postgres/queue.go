package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
	"github.com/veridoc-labs/veridoc-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*TaskQueue)(nil)

// pollInterval is how long DequeueWithTimeout sleeps between polls
// when no task is ready.
const pollInterval = 500 * time.Millisecond

// TaskQueue implements driven.TaskQueue on the tasks table. It is the
// fallback for deployments without Redis; claiming uses
// FOR UPDATE SKIP LOCKED so multiple workers never double-process.
type TaskQueue struct {
	db *DB
}

// NewTaskQueue creates a new TaskQueue
func NewTaskQueue(db *DB) *TaskQueue {
	return &TaskQueue{db: db}
}

// Enqueue adds a task to the queue
func (q *TaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, type, document_id, status, attempts, max_attempts, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := q.db.ExecContext(ctx, query,
		task.ID,
		string(task.Type),
		task.DocumentID,
		string(domain.TaskStatusPending),
		task.Attempts,
		task.MaxAttempts,
		task.Error,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

// DequeueWithTimeout polls for the next pending task, waiting up to
// timeout seconds. Returns nil, nil when the timeout elapses.
func (q *TaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)

	for {
		task, err := q.claim(ctx)
		if err != nil {
			return nil, err
		}
		if task != nil {
			return task, nil
		}

		if time.Now().After(deadline) {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// claim atomically marks the oldest pending task as processing and
// returns it, or nil when the queue is empty.
func (q *TaskQueue) claim(ctx context.Context) (*domain.Task, error) {
	var task domain.Task
	var taskType, status string

	err := q.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT id, type, document_id, status, attempts, max_attempts, error, created_at, updated_at
			FROM tasks
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`

		err := tx.QueryRowContext(ctx, query).Scan(
			&task.ID,
			&taskType,
			&task.DocumentID,
			&status,
			&task.Attempts,
			&task.MaxAttempts,
			&task.Error,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return err
		}

		update := `
			UPDATE tasks
			SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, update, task.ID)
		return err
	})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task.Type = domain.TaskType(taskType)
	task.Status = domain.TaskStatusProcessing
	task.Attempts++

	return &task, nil
}

// Ack marks a task completed
func (q *TaskQueue) Ack(ctx context.Context, taskID string) error {
	query := `UPDATE tasks SET status = 'completed', updated_at = NOW() WHERE id = $1`
	_, err := q.db.ExecContext(ctx, query, taskID)
	return err
}

// Nack returns a task to the queue for retry, or marks it failed once
// attempts are exhausted.
func (q *TaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	query := `
		UPDATE tasks
		SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
		    error = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.db.ExecContext(ctx, query, taskID, reason)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s not found", taskID)
	}

	return nil
}

// Ping checks if the queue backend is healthy
func (q *TaskQueue) Ping(ctx context.Context) error {
	return q.db.Ping(ctx)
}

// Close is a no-op; the shared DB pool is closed by its owner
func (q *TaskQueue) Close() error {
	return nil
}
