package domain

import "time"

// TaskType names a kind of background job.
type TaskType string

const (
	// TaskTypeWarmSession rebuilds a document's in-memory index and
	// history after a restart.
	TaskTypeWarmSession TaskType = "warm_session"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is a background job picked up by workers.
type Task struct {
	ID         string   `json:"id"`
	Type       TaskType `json:"type"`
	DocumentID string   `json:"document_id"`

	Status TaskStatus `json:"status"`

	// Attempts counts how many times the task has been tried;
	// MaxAttempts caps it before the task is marked failed.
	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"max_attempts"`

	// Error holds the last failure message.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWarmSessionTask creates a task to rehydrate a document session.
func NewWarmSessionTask(documentID string) *Task {
	now := time.Now()
	return &Task{
		ID:          GenerateID(),
		Type:        TaskTypeWarmSession,
		DocumentID:  documentID,
		Status:      TaskStatusPending,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
