package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/ytakahashi/tasks/internal/models"
	"github.com/ytakahashi/tasks/internal/notify"
	"github.com/ytakahashi/tasks/internal/services"
)

type TaskHandler struct {
	store    services.TaskStore
	notifier notify.Notifier
	logger   *log.Logger
}

func NewTaskHandler(store services.TaskStore, notifier notify.Notifier, logger *log.Logger) *TaskHandler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &TaskHandler{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Register mounts the task routes on g, expected to be /api/tasks.
func (h *TaskHandler) Register(g *echo.Group) {
	g.GET("", h.ListTasks)
	g.POST("", h.CreateTask)
	g.PATCH("/:id", h.UpdateTask)
	g.DELETE("/:id", h.DeleteTask)
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.store.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req models.CreateTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	task, err := h.store.CreateTask(c.Request().Context(), *req.Title)
	if err != nil {
		return err
	}

	h.notify(c, notify.Event{Action: notify.ActionCreated, Task: *task})
	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/:id.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req models.UpdateTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	task, err := h.store.UpdateTaskDone(c.Request().Context(), id, *req.Done)
	if err != nil {
		return err
	}

	h.notify(c, notify.Event{Action: notify.DoneAction(task.Done), Task: *task})
	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.store.DeleteTask(c.Request().Context(), id)
	if err != nil {
		return err
	}

	h.notify(c, notify.Event{Action: notify.ActionDeleted, Task: *task})
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) notify(c echo.Context, ev notify.Event) {
	if err := h.notifier.Notify(c.Request().Context(), ev); err != nil {
		h.logger.Warn("notify failed", "action", ev.Action, "task_id", ev.Task.ID, "err", err)
	}
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Reason: "must be a decimal integer"}
	}
	return id, nil
}
