package page

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ytakahashi/tasks/internal/client"
	"github.com/ytakahashi/tasks/internal/handlers"
	"github.com/ytakahashi/tasks/internal/models"
	"github.com/ytakahashi/tasks/internal/notify"
	"github.com/ytakahashi/tasks/internal/testutil"
)

// countingAPI wraps an API and counts calls per method.
type countingAPI struct {
	API
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newCountingAPI(inner API) *countingAPI {
	return &countingAPI{API: inner, calls: map[string]int{}, fail: map[string]bool{}}
}

func (c *countingAPI) hit(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
	if c.fail[name] {
		return errors.New(name + " failed")
	}
	return nil
}

func (c *countingAPI) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *countingAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	if err := c.hit("list"); err != nil {
		return nil, err
	}
	return c.API.ListTasks(ctx)
}

func (c *countingAPI) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	if err := c.hit("create"); err != nil {
		return nil, err
	}
	return c.API.CreateTask(ctx, title)
}

func (c *countingAPI) SetDone(ctx context.Context, id int64, done bool) (*models.Task, error) {
	if err := c.hit("toggle"); err != nil {
		return nil, err
	}
	return c.API.SetDone(ctx, id, done)
}

func (c *countingAPI) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	if err := c.hit("delete"); err != nil {
		return nil, err
	}
	return c.API.DeleteTask(ctx, id)
}

func newPageAPI(t *testing.T) *countingAPI {
	t.Helper()
	store := testutil.NewFakeStore()
	srv := httptest.NewServer(handlers.NewServer(store, notify.Noop{}, log.New(io.Discard)))
	t.Cleanup(srv.Close)
	return newCountingAPI(client.New(srv.URL, srv.Client()))
}

// drive applies msg and runs every resulting command to completion.
func drive(t *testing.T, m tea.Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		var cmd tea.Cmd
		m, cmd = m.Update(next)
		if cmd == nil {
			continue
		}
		out := cmd()
		if batch, ok := out.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					queue = append(queue, c())
				}
			}
			continue
		}
		if out != nil {
			queue = append(queue, out)
		}
	}
	return m.(Model)
}

// mount runs Init the way the bubbletea runtime does.
func mount(t *testing.T, api API) Model {
	t.Helper()
	m := New(api)
	return drive(t, m, m.Init()())
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestInitFetchesOnce(t *testing.T) {
	api := newPageAPI(t)
	m := New(api)
	if !m.State().IsListLoading {
		t.Error("expected loading before first fetch")
	}

	m = drive(t, m, m.Init()())
	if got := api.count("list"); got != 1 {
		t.Errorf("list calls: got %d, want 1", got)
	}
	if m.State().IsListLoading {
		t.Error("still loading after fetch")
	}
	if !strings.Contains(m.View(), "What do you want to do today?") {
		t.Errorf("expected empty state:\n%s", m.View())
	}
}

func TestAddToggleDeleteScenario(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)

	m = drive(t, m, typeText("Buy milk"))
	if m.State().TitleDraft != "Buy milk" {
		t.Fatalf("draft: got %q", m.State().TitleDraft)
	}
	m = drive(t, m, keyEnter)

	s := m.State()
	if len(s.Tasks) != 1 || s.Tasks[0].Title != "Buy milk" || s.Tasks[0].Done {
		t.Fatalf("after add: %+v", s.Tasks)
	}
	if s.TitleDraft != "" || s.IsSubmitting {
		t.Errorf("draft/submitting not reset: %+v", s)
	}
	if view := m.View(); !strings.Contains(view, "Buy milk") || !strings.Contains(view, boxUnchecked) {
		t.Errorf("view after add:\n%s", view)
	}

	m = drive(t, m, keyEsc)
	m = drive(t, m, keySpace)
	s = m.State()
	if len(s.Tasks) != 1 || !s.Tasks[0].Done {
		t.Fatalf("after toggle: %+v", s.Tasks)
	}
	if !strings.Contains(m.View(), boxChecked) {
		t.Errorf("view after toggle:\n%s", m.View())
	}

	m = drive(t, m, typeText("d"))
	s = m.State()
	if len(s.Tasks) != 0 {
		t.Fatalf("after delete: %+v", s.Tasks)
	}
	if !strings.Contains(m.View(), "What do you want to do today?") {
		t.Errorf("expected empty state:\n%s", m.View())
	}

	// mount + one re-fetch per mutation
	if got := api.count("list"); got != 4 {
		t.Errorf("list calls: got %d, want 4", got)
	}
}

func TestBlankDraftIsNoop(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)

	m = drive(t, m, typeText("   "))
	m = drive(t, m, keyEnter)

	if got := api.count("create"); got != 0 {
		t.Errorf("create calls: got %d, want 0", got)
	}
	if m.State().IsSubmitting {
		t.Error("blank draft marked submitting")
	}
}

func TestLongDraftIsNotTruncated(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)

	long := strings.Repeat("x", 500)
	m = drive(t, m, typeText(long))
	if got := len(m.State().TitleDraft); got != 500 {
		t.Fatalf("draft length: got %d, want 500", got)
	}
	m = drive(t, m, keyEnter)
	if s := m.State(); len(s.Tasks) != 1 || s.Tasks[0].Title != long {
		t.Errorf("stored title truncated: %+v", s.Tasks)
	}
}

func TestEnterIgnoredWhileSubmitting(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)
	m = drive(t, m, typeText("once"))

	next, cmd := m.Update(keyEnter)
	if cmd == nil {
		t.Fatal("expected create command")
	}
	if !next.(Model).State().IsSubmitting {
		t.Fatal("expected submitting")
	}
	if _, again := next.Update(keyEnter); again != nil {
		t.Error("second enter while submitting issued a command")
	}
	if !strings.Contains(next.View(), "Adding…") {
		t.Errorf("expected busy add button:\n%s", next.View())
	}
}

func TestErrorMessages(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)
	m = drive(t, m, typeText("a"))
	m = drive(t, m, keyEnter)

	api.fail["create"] = true
	m = drive(t, m, typeText("b"))
	m = drive(t, m, keyEnter)
	if got := m.State().LastError; got != "Failed to add task." {
		t.Errorf("add failure: got %q", got)
	}
	if !strings.Contains(m.View(), "Failed to add task.") {
		t.Errorf("error not rendered:\n%s", m.View())
	}

	m = drive(t, m, keyEsc)
	api.fail["toggle"] = true
	m = drive(t, m, keySpace)
	if got := m.State().LastError; got != "Failed to toggle task." {
		t.Errorf("toggle failure: got %q", got)
	}

	api.fail["delete"] = true
	m = drive(t, m, typeText("d"))
	if got := m.State().LastError; got != "Failed to delete task." {
		t.Errorf("delete failure: got %q", got)
	}

	api.fail["list"] = true
	m = drive(t, m, typeText("r"))
	if got := m.State().LastError; got != "Failed to fetch tasks." {
		t.Errorf("fetch failure: got %q", got)
	}

	api.fail = map[string]bool{}
	m = drive(t, m, keySpace)
	if got := m.State().LastError; got != "" {
		t.Errorf("successful action did not clear error: %q", got)
	}
}

func TestServerErrorCountsAsFailure(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)
	m = drive(t, m, keyEsc)

	// no selection, nothing happens
	m = drive(t, m, typeText("d"))
	if api.count("delete") != 0 {
		t.Error("delete issued with empty list")
	}

	m = drive(t, m, typeText("a"))
	m = drive(t, m, typeText("x"))
	m = drive(t, m, keyEnter)
	id := m.State().Tasks[0].ID

	// deleted behind the page's back: the API answers 404
	if _, err := api.API.DeleteTask(context.Background(), id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	m = drive(t, m, keyEsc)
	m = drive(t, m, typeText("d"))
	if got := m.State().LastError; got != "Failed to delete task." {
		t.Errorf("404 delete: got %q", got)
	}
}

func TestListOrderIsAPIOrder(t *testing.T) {
	api := newPageAPI(t)
	m := mount(t, api)
	for _, title := range []string{"A", "B", "C"} {
		m = drive(t, m, typeText(title))
		m = drive(t, m, keyEnter)
	}

	var got []string
	for _, task := range m.State().Tasks {
		got = append(got, task.Title)
	}
	if strings.Join(got, ",") != "C,B,A" {
		t.Errorf("order: got %v, want [C B A]", got)
	}

	// toggles the second row
	m = drive(t, m, keyEsc)
	m = drive(t, m, keyDown)
	m = drive(t, m, keySpace)
	for _, task := range m.State().Tasks {
		if task.Done != (task.Title == "B") {
			t.Errorf("task %s done=%v", task.Title, task.Done)
		}
	}
}
