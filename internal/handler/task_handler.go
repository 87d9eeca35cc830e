package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"goaltracker/internal/middleware"
	"goaltracker/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	loc         *time.Location
}

// NewTaskHandler creates a new task handler. Dates without an offset are read in
// defaultLoc unless the request names a tz.
func NewTaskHandler(taskService service.TaskService, defaultLoc *time.Location) *TaskHandler {
	return &TaskHandler{taskService: taskService, loc: defaultLoc}
}

// CreateTaskRequest represents a new task under a goal.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	Priority    string `json:"priority"`
}

// UpdateTaskRequest represents a partial task update.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	IsCompleted *bool   `json:"is_completed"`
}

// ListForGoal godoc
// @Summary List a goal's tasks by due date
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} Response{data=[]model.Task}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id}/tasks [get]
func (h *TaskHandler) ListForGoal(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasksForGoal(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return list(c, tasks, len(tasks))
}

// Create godoc
// @Summary Create a task under a goal
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param request body CreateTaskRequest true "Task"
// @Param tz query string false "IANA time zone for dates without an offset"
// @Success 201 {object} Response{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id}/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loc, err := dateLocation(c, h.loc)
	if err != nil {
		return err
	}
	due, err := parseDate("due_date", req.DueDate, loc)
	if err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), user.ID, c.Param("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, task)
}

// Today godoc
// @Summary List the caller's tasks due today
// @Description Highest priority first. The day is taken in the tz time zone, or the server default.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param tz query string false "IANA time zone, e.g. Europe/Berlin"
// @Success 200 {object} Response{data=[]model.TodayTask}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks/today [get]
func (h *TaskHandler) Today(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	loc, err := location(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.TodayTasks(c.Request().Context(), user.ID, loc)
	if err != nil {
		return err
	}
	return list(c, tasks, len(tasks))
}

// Update godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Param tz query string false "IANA time zone for dates without an offset"
// @Success 200 {object} Response{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loc, err := dateLocation(c, h.loc)
	if err != nil {
		return err
	}
	due, err := parseOptionalDate("due_date", req.DueDate, loc)
	if err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), user.ID, c.Param("id"), service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, task)
}

// Toggle godoc
// @Summary Flip a task's completion
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Response{data=model.Task}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Toggle(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ToggleTask(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{})
}

// Generate godoc
// @Summary Suggest tasks for a goal
// @Description Suggestions are spread over the time left until the target date. Nothing is persisted.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} Response{data=[]model.SuggestedTask}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id}/generate-tasks [post]
func (h *TaskHandler) Generate(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	suggestions, err := h.taskService.GenerateTasks(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return list(c, suggestions, len(suggestions))
}
