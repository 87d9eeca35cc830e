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

// GoalInput carries the caller-settable fields of a new goal.
type GoalInput struct {
	Title       string
	Description string
	Category    string
	TargetDate  time.Time
	Priority    string
}

// GoalUpdate carries a partial goal update. Nil fields are left unchanged.
// Progress and completion are not updatable here; they belong to the reconciler
// and to CompleteGoal.
type GoalUpdate struct {
	Title       *string
	Description *string
	Category    *string
	TargetDate  *time.Time
	Priority    *string
}

// GoalService handles goal operations. Every operation on an existing goal
// fails with ErrGoalNotFound or ErrForbidden before touching storage.
type GoalService interface {
	ListGoals(ctx context.Context, callerID string) ([]model.Goal, error)
	CreateGoal(ctx context.Context, callerID string, in GoalInput) (*model.Goal, error)
	GetGoal(ctx context.Context, callerID, goalID string) (*model.Goal, error)
	UpdateGoal(ctx context.Context, callerID, goalID string, in GoalUpdate) (*model.Goal, error)
	DeleteGoal(ctx context.Context, callerID, goalID string) error
	CompleteGoal(ctx context.Context, callerID, goalID string) (*model.Goal, error)
	GeneratePlan(ctx context.Context, in PlanInput) (*model.Plan, error)
}

type goalService struct {
	goals   repository.GoalRepository
	tasks   repository.TaskRepository
	planner Planner
	logger  *zap.Logger
	now     func() time.Time
}

// NewGoalService creates a new goal service.
func NewGoalService(goals repository.GoalRepository, tasks repository.TaskRepository, planner Planner, logger *zap.Logger) GoalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planner == nil {
		planner = StaticPlanner{}
	}
	return &goalService{
		goals:   goals,
		tasks:   tasks,
		planner: planner,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *goalService) ListGoals(ctx context.Context, callerID string) ([]model.Goal, error) {
	goals, err := s.goals.ListByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// CreateGoal persists a goal owned by the caller with zero progress.
func (s *goalService) CreateGoal(ctx context.Context, callerID string, in GoalInput) (*model.Goal, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := requireDate("target_date", in.TargetDate); err != nil {
		return nil, err
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	goal := &model.Goal{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		TargetDate:  in.TargetDate.UTC(),
		Priority:    priority,
		Progress:    0,
		IsCompleted: false,
		UserID:      callerID,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.logger.Info("goal created", zap.String("goal_id", goal.ID), zap.String("user_id", callerID))
	return goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, callerID, goalID string) (*model.Goal, error) {
	return loadOwnedGoal(ctx, s.goals, callerID, goalID)
}

func (s *goalService) UpdateGoal(ctx context.Context, callerID, goalID string, in GoalUpdate) (*model.Goal, error) {
	goal, err := loadOwnedGoal(ctx, s.goals, callerID, goalID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if goal.Title, err = requireTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		goal.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		if goal.Category, err = parseCategory(*in.Category); err != nil {
			return nil, err
		}
	}
	if in.TargetDate != nil {
		if err := requireDate("target_date", *in.TargetDate); err != nil {
			return nil, err
		}
		goal.TargetDate = in.TargetDate.UTC()
	}
	if in.Priority != nil {
		if goal.Priority, err = parsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return goal, nil
}

// DeleteGoal removes the goal's tasks first, then the goal.
func (s *goalService) DeleteGoal(ctx context.Context, callerID, goalID string) error {
	if _, err := loadOwnedGoal(ctx, s.goals, callerID, goalID); err != nil {
		return err
	}

	if err := s.tasks.DeleteByGoal(ctx, goalID); err != nil {
		return fmt.Errorf("delete goal tasks: %w", err)
	}
	if err := s.goals.Delete(ctx, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrGoalNotFound
		}
		return fmt.Errorf("delete goal: %w", err)
	}

	s.logger.Info("goal deleted", zap.String("goal_id", goalID), zap.String("user_id", callerID))
	return nil
}

// CompleteGoal marks the goal done at 100% and every bound task completed,
// regardless of the tasks' previous state.
func (s *goalService) CompleteGoal(ctx context.Context, callerID, goalID string) (*model.Goal, error) {
	goal, err := loadOwnedGoal(ctx, s.goals, callerID, goalID)
	if err != nil {
		return nil, err
	}

	if err := s.goals.UpdateProgress(ctx, goalID, 100, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, fmt.Errorf("complete goal: %w", err)
	}
	if err := s.tasks.CompleteAllByGoal(ctx, goalID); err != nil {
		return nil, fmt.Errorf("complete goal tasks: %w", err)
	}

	goal.Progress = 100
	goal.IsCompleted = true
	return goal, nil
}

// GeneratePlan returns a milestone schedule relative to now. Nothing is persisted.
func (s *goalService) GeneratePlan(ctx context.Context, in PlanInput) (*model.Plan, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	in.Title = title
	return s.planner.GeneratePlan(in, category, s.now()), nil
}
