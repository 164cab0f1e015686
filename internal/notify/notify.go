// Package notify announces task activity to an external channel.
package notify

import (
	"context"

	"github.com/ytakahashi/tasks/internal/models"
)

// Action names what happened to a task.
type Action string

const (
	ActionCreated   Action = "created"
	ActionCompleted Action = "completed"
	ActionReopened  Action = "reopened"
	ActionDeleted   Action = "deleted"
)

// Event is one task change.
type Event struct {
	Action Action
	Task   models.Task
}

// DoneAction maps a done flag to completed or reopened.
func DoneAction(done bool) Action {
	if done {
		return ActionCompleted
	}
	return ActionReopened
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }
