// Package page is the terminal task page: a state machine driven by API
// results and a bubbletea view over it.
package page

import (
	"strings"

	"github.com/ytakahashi/tasks/internal/models"
)

// Action identifies a user action for error reporting.
type Action int

const (
	ActionFetch Action = iota
	ActionAdd
	ActionDelete
	ActionToggle
)

// Message is the fixed user-facing error for a failed action.
func (a Action) Message() string {
	switch a {
	case ActionFetch:
		return "Failed to fetch tasks."
	case ActionAdd:
		return "Failed to add task."
	case ActionDelete:
		return "Failed to delete task."
	case ActionToggle:
		return "Failed to toggle task."
	default:
		return "Something went wrong."
	}
}

// State is the view-local state of the page. It is only changed through
// the transition methods below.
type State struct {
	Tasks         []models.Task
	TitleDraft    string
	IsListLoading bool
	IsSubmitting  bool
	LastError     string
}

func (s *State) FetchStarted() {
	s.IsListLoading = true
}

// FetchSucceeded replaces the list wholesale, in the order the API returned.
func (s *State) FetchSucceeded(tasks []models.Task) {
	s.Tasks = tasks
	s.IsListLoading = false
	s.LastError = ""
}

func (s *State) FetchFailed() {
	s.IsListLoading = false
	s.LastError = ActionFetch.Message()
}

// BeginAdd returns the title to create, or false when the add must be
// skipped: blank draft or a submission already in flight.
func (s *State) BeginAdd() (string, bool) {
	if s.IsSubmitting || strings.TrimSpace(s.TitleDraft) == "" {
		return "", false
	}
	s.IsSubmitting = true
	return s.TitleDraft, true
}

func (s *State) SubmitSucceeded() {
	s.IsSubmitting = false
	s.TitleDraft = ""
	s.LastError = ""
}

func (s *State) SubmitFailed() {
	s.IsSubmitting = false
	s.LastError = ActionAdd.Message()
}

func (s *State) MutationSucceeded() {
	s.LastError = ""
}

func (s *State) MutationFailed(a Action) {
	s.LastError = a.Message()
}

// IsEmpty reports whether the empty-state view should be shown.
func (s *State) IsEmpty() bool {
	return len(s.Tasks) == 0
}
