package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

// TaskInput carries the caller-settable fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    string
}

// TaskUpdate carries a partial task update. Nil fields are left unchanged.
// The goal binding cannot be changed.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	IsCompleted *bool
}

// TaskService handles task operations. Every mutation is followed by a
// reconciliation of the parent goal's progress.
type TaskService interface {
	CreateTask(ctx context.Context, callerID, goalID string, in TaskInput) (*model.Task, error)
	ListTasksForGoal(ctx context.Context, callerID, goalID string) ([]model.Task, error)
	TodayTasks(ctx context.Context, callerID string, loc *time.Location) ([]model.TodayTask, error)
	UpdateTask(ctx context.Context, callerID, taskID string, in TaskUpdate) (*model.Task, error)
	DeleteTask(ctx context.Context, callerID, taskID string) error
	ToggleTask(ctx context.Context, callerID, taskID string) (*model.Task, error)
	GenerateTasks(ctx context.Context, callerID, goalID string) ([]model.SuggestedTask, error)
}

type taskService struct {
	goals      repository.GoalRepository
	tasks      repository.TaskRepository
	reconciler Reconciler
	planner    Planner
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewTaskService creates a new task service. loc is the default calendar used
// by TodayTasks when the caller does not supply one.
func NewTaskService(
	goals repository.GoalRepository,
	tasks repository.TaskRepository,
	reconciler Reconciler,
	planner Planner,
	loc *time.Location,
	logger *zap.Logger,
) TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planner == nil {
		planner = StaticPlanner{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &taskService{
		goals:      goals,
		tasks:      tasks,
		reconciler: reconciler,
		planner:    planner,
		location:   loc,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTask binds a new, open task to the caller's goal.
func (s *taskService) CreateTask(ctx context.Context, callerID, goalID string, in TaskInput) (*model.Task, error) {
	goal, err := loadOwnedGoal(ctx, s.goals, callerID, goalID)
	if err != nil {
		return nil, err
	}

	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := requireDate("due_date", in.DueDate); err != nil {
		return nil, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate.UTC(),
		Priority:    priority,
		IsCompleted: false,
		GoalID:      goal.ID,
		UserID:      goal.UserID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if err := s.reconcile(ctx, goal.ID); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasksForGoal returns the goal's tasks by due date.
func (s *taskService) ListTasksForGoal(ctx context.Context, callerID, goalID string) ([]model.Task, error) {
	if _, err := loadOwnedGoal(ctx, s.goals, callerID, goalID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// TodayTasks returns the caller's tasks due during the current day in loc,
// highest priority first, each with its goal's title.
func (s *taskService) TodayTasks(ctx context.Context, callerID string, loc *time.Location) ([]model.TodayTask, error) {
	if loc == nil {
		loc = s.location
	}
	start, end := DayBounds(s.now(), loc)

	tasks, err := s.tasks.ListByUserDueBetween(ctx, callerID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list today tasks: %w", err)
	}
	if len(tasks) == 0 {
		return []model.TodayTask{}, nil
	}

	goals, err := s.goals.ListByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	titles := make(map[string]string, len(goals))
	for _, g := range goals {
		titles[g.ID] = g.Title
	}

	out := make([]model.TodayTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, model.TodayTask{Task: t, GoalTitle: titles[t.GoalID]})
	}
	sortByPriority(out)
	return out, nil
}

func (s *taskService) UpdateTask(ctx context.Context, callerID, taskID string, in TaskUpdate) (*model.Task, error) {
	task, err := loadOwnedTask(ctx, s.tasks, callerID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if task.Title, err = requireTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.DueDate != nil {
		if err := requireDate("due_date", *in.DueDate); err != nil {
			return nil, err
		}
		task.DueDate = in.DueDate.UTC()
	}
	if in.Priority != nil {
		if task.Priority, err = parsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}
	if in.IsCompleted != nil {
		task.IsCompleted = *in.IsCompleted
	}

	return s.save(ctx, task)
}

// DeleteTask removes the task and recomputes its former goal.
func (s *taskService) DeleteTask(ctx context.Context, callerID, taskID string) error {
	task, err := loadOwnedTask(ctx, s.tasks, callerID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return s.reconcile(ctx, task.GoalID)
}

// ToggleTask flips the task's completion flag.
func (s *taskService) ToggleTask(ctx context.Context, callerID, taskID string) (*model.Task, error) {
	task, err := loadOwnedTask(ctx, s.tasks, callerID, taskID)
	if err != nil {
		return nil, err
	}
	task.IsCompleted = !task.IsCompleted
	return s.save(ctx, task)
}

// GenerateTasks proposes three tasks for the goal without persisting them.
func (s *taskService) GenerateTasks(ctx context.Context, callerID, goalID string) ([]model.SuggestedTask, error) {
	goal, err := loadOwnedGoal(ctx, s.goals, callerID, goalID)
	if err != nil {
		return nil, err
	}
	return s.planner.SuggestTasks(goal, s.now()), nil
}

func (s *taskService) save(ctx context.Context, task *model.Task) (*model.Task, error) {
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := s.reconcile(ctx, task.GoalID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) reconcile(ctx context.Context, goalID string) error {
	if err := s.reconciler.Reconcile(ctx, goalID); err != nil {
		s.logger.Error("goal progress reconcile failed", zap.String("goal_id", goalID), zap.Error(err))
		return fmt.Errorf("reconcile goal %s: %w", goalID, err)
	}
	return nil
}
