package services

import (
	"context"
	"errors"

	"github.com/ytakahashi/tasks/internal/models"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrStorage wraps connection and query failures of the backing store.
	ErrStorage = errors.New("storage failure")
)

// TaskStore persists tasks. Every method is a single-row operation.
type TaskStore interface {
	// ListTasks returns all tasks, newest first.
	ListTasks(ctx context.Context) ([]models.Task, error)
	// CreateTask inserts a task with done=false.
	CreateTask(ctx context.Context, title string) (*models.Task, error)
	// UpdateTaskDone sets the done flag and returns the updated task.
	UpdateTaskDone(ctx context.Context, id int64, done bool) (*models.Task, error)
	// DeleteTask removes the task and returns its last known value.
	DeleteTask(ctx context.Context, id int64) (*models.Task, error)
	Close() error
}
