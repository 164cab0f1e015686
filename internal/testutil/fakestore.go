// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ytakahashi/tasks/internal/models"
	"github.com/ytakahashi/tasks/internal/notify"
	"github.com/ytakahashi/tasks/internal/services"
)

// FakeStore is an in-memory implementation of services.TaskStore for testing.
type FakeStore struct {
	mu     sync.Mutex
	tasks  []models.Task // oldest first
	nextID int64
	now    time.Time

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

var _ services.TaskStore = (*FakeStore)(nil)

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		nextID: 1,
		now:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Tasks returns a copy of the stored tasks, oldest first.
func (f *FakeStore) Tasks() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...)
}

func (f *FakeStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Task, 0, len(f.tasks))
	for i := len(f.tasks) - 1; i >= 0; i-- {
		out = append(out, f.tasks[i])
	}
	return out, nil
}

func (f *FakeStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.now = f.now.Add(time.Second)
	task := models.Task{ID: f.nextID, Title: title, CreatedAt: f.now}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *FakeStore) UpdateTaskDone(ctx context.Context, id int64, done bool) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Done = done
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *FakeStore) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			task := f.tasks[i]
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return &task, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *FakeStore) Close() error { return nil }

// RecordingNotifier captures notify events.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event

	// Err is returned from every Notify call after recording.
	Err error
}

func (r *RecordingNotifier) Notify(ctx context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

// Actions returns the recorded actions in order.
func (r *RecordingNotifier) Actions() []notify.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Action, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}
