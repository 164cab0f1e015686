package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ytakahashi/tasks/internal/models"
)

// API is the part of the task API the page uses.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title string) (*models.Task, error)
	SetDone(ctx context.Context, id int64, done bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) (*models.Task, error)
}

const requestTimeout = 15 * time.Second

type tasksLoadedMsg struct{ tasks []models.Task }

type fetchFailedMsg struct{ err error }

type createdMsg struct{ err error }

type mutatedMsg struct {
	action Action
	err    error
}

type keyMap struct {
	Add    key.Binding
	Submit key.Binding
	Leave  key.Binding
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Delete key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a", "i"), key.WithHelp("a", "add")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Leave:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "list")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Delete: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model of the task page.
type Model struct {
	api    API
	state  State
	input  textinput.Model
	help   help.Model
	keys   keyMap
	adding bool // draft input has focus
	cursor int
}

// New returns a page with the draft input focused and the initial
// fetch pending.
func New(api API) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter a new task..."
	ti.CharLimit = 0
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	m := Model{
		api:    api,
		input:  ti,
		help:   help.New(),
		keys:   defaultKeys(),
		adding: true,
	}
	m.state.FetchStarted()
	return m
}

// State returns a copy of the page state.
func (m Model) State() State {
	return m.state
}

// Init fetches the task list once.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := api.ListTasks(ctx)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m Model) create(title string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := api.CreateTask(ctx, title)
		return createdMsg{err: err}
	}
}

func (m Model) toggle(task models.Task) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := api.SetDone(ctx, task.ID, !task.Done)
		return mutatedMsg{action: ActionToggle, err: err}
	}
}

func (m Model) remove(task models.Task) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := api.DeleteTask(ctx, task.ID)
		return mutatedMsg{action: ActionDelete, err: err}
	}
}

func (m Model) refetch() (tea.Model, tea.Cmd) {
	m.state.FetchStarted()
	return m, m.fetch()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if msg.Width > 30 {
			m.input.Width = msg.Width - 20
		}
		return m, nil

	case tasksLoadedMsg:
		m.state.FetchSucceeded(msg.tasks)
		m.clampCursor()
		return m, nil

	case fetchFailedMsg:
		m.state.FetchFailed()
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.state.SubmitFailed()
			return m, nil
		}
		m.state.SubmitSucceeded()
		m.input.SetValue("")
		return m.refetch()

	case mutatedMsg:
		if msg.err != nil {
			m.state.MutationFailed(msg.action)
			return m, nil
		}
		m.state.MutationSucceeded()
		return m.refetch()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		title, ok := m.state.BeginAdd()
		if !ok {
			return m, nil
		}
		return m, m.create(title)
	case key.Matches(msg, m.keys.Leave):
		m.adding = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.state.TitleDraft = m.input.Value()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m.refetch()
	case key.Matches(msg, m.keys.Toggle):
		if task, ok := m.selected(); ok {
			return m, m.toggle(task)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			return m, m.remove(task)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Tasks) {
		return models.Task{}, false
	}
	return m.state.Tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Tasks) {
		m.cursor = len(m.state.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Todo list")
	if m.state.IsListLoading {
		header += "  " + mutedStyle.Render("loading…")
	}
	b.WriteString(header + "\n\n")

	button := buttonStyle.Render("Add")
	if m.state.IsSubmitting {
		button = busyStyle.Render("Adding…")
	}
	b.WriteString(m.input.View() + "  " + button + "\n")

	if m.state.LastError != "" {
		b.WriteString("\n" + errorStyle.Render(m.state.LastError) + "\n")
	}
	b.WriteString("\n")

	if m.state.IsEmpty() {
		b.WriteString(mutedStyle.Render(emptyIllustration) + "\n\n")
		b.WriteString(emptyPrompt + "\n")
	} else {
		for i, task := range m.state.Tasks {
			b.WriteString(m.renderRow(i, task) + "\n")
		}
	}

	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return panelStyle.Render(b.String())
}

func (m Model) renderRow(i int, task models.Task) string {
	box := mutedStyle.Render(boxUnchecked)
	title := task.Title
	if task.Done {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}
	prefix := "  "
	if !m.adding && i == m.cursor {
		prefix = selectedStyle.Render(">") + " "
	}
	return fmt.Sprintf("%s%s %s", prefix, box, title)
}

func (m Model) helpKeys() []key.Binding {
	if m.adding {
		return []key.Binding{m.keys.Submit, m.keys.Leave}
	}
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Delete, m.keys.Add, m.keys.Reload, m.keys.Quit}
}
