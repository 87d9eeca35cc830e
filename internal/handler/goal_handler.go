package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"goaltracker/internal/middleware"
	"goaltracker/internal/service"
)

// GoalHandler handles goal endpoints.
type GoalHandler struct {
	goalService service.GoalService
	loc         *time.Location
}

// NewGoalHandler creates a new goal handler. Dates without an offset are read in
// defaultLoc unless the request names a tz.
func NewGoalHandler(goalService service.GoalService, defaultLoc *time.Location) *GoalHandler {
	return &GoalHandler{goalService: goalService, loc: defaultLoc}
}

// CreateGoalRequest represents a new goal.
type CreateGoalRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TargetDate  string `json:"target_date" validate:"required"`
	Priority    string `json:"priority"`
}

// UpdateGoalRequest represents a partial goal update. Progress and completion
// cannot be set here.
type UpdateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	TargetDate  *string `json:"target_date"`
	Priority    *string `json:"priority"`
}

// GeneratePlanRequest describes the goal a plan is generated for.
type GeneratePlanRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate" validate:"required"`
	Category    string `json:"category"`
}

// List godoc
// @Summary List the caller's goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Goal}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /goals [get]
func (h *GoalHandler) List(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	goals, err := h.goalService.ListGoals(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return list(c, goals, len(goals))
}

// Create godoc
// @Summary Create a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "Goal"
// @Param tz query string false "IANA time zone for dates without an offset"
// @Success 201 {object} Response{data=model.Goal}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /goals [post]
func (h *GoalHandler) Create(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateGoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loc, err := dateLocation(c, h.loc)
	if err != nil {
		return err
	}
	target, err := parseDate("target_date", req.TargetDate, loc)
	if err != nil {
		return err
	}

	goal, err := h.goalService.CreateGoal(c.Request().Context(), user.ID, service.GoalInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TargetDate:  target,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, goal)
}

// Get godoc
// @Summary Get a goal
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} Response{data=model.Goal}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id} [get]
func (h *GoalHandler) Get(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	goal, err := h.goalService.GetGoal(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, goal)
}

// Update godoc
// @Summary Update a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param request body UpdateGoalRequest true "Fields to change"
// @Param tz query string false "IANA time zone for dates without an offset"
// @Success 200 {object} Response{data=model.Goal}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id} [put]
func (h *GoalHandler) Update(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateGoalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loc, err := dateLocation(c, h.loc)
	if err != nil {
		return err
	}
	target, err := parseOptionalDate("target_date", req.TargetDate, loc)
	if err != nil {
		return err
	}

	goal, err := h.goalService.UpdateGoal(c.Request().Context(), user.ID, c.Param("id"), service.GoalUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TargetDate:  target,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, goal)
}

// Delete godoc
// @Summary Delete a goal and its tasks
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id} [delete]
func (h *GoalHandler) Delete(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.goalService.DeleteGoal(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{})
}

// Complete godoc
// @Summary Mark a goal and all of its tasks completed
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 200 {object} Response{data=model.Goal}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /goals/{id}/complete [patch]
func (h *GoalHandler) Complete(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	goal, err := h.goalService.CompleteGoal(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, goal)
}

// GeneratePlan godoc
// @Summary Propose a milestone plan for a goal
// @Description Nothing is persisted.
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GeneratePlanRequest true "Goal description"
// @Param tz query string false "IANA time zone for dates without an offset"
// @Success 200 {object} Response{data=model.Plan}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /goals/generate-plan [post]
func (h *GoalHandler) GeneratePlan(c echo.Context) error {
	var req GeneratePlanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	loc, err := dateLocation(c, h.loc)
	if err != nil {
		return err
	}
	target, err := parseDate("targetDate", req.TargetDate, loc)
	if err != nil {
		return err
	}

	plan, err := h.goalService.GeneratePlan(c.Request().Context(), service.PlanInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  target,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plan)
}
