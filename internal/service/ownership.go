package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

// loadOwnedGoal loads a goal and checks it belongs to callerID.
func loadOwnedGoal(ctx context.Context, goals repository.GoalRepository, callerID, goalID string) (*model.Goal, error) {
	goal, err := goals.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if goal.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}
	return goal, nil
}

// loadOwnedTask loads a task and checks it belongs to callerID.
func loadOwnedTask(ctx context.Context, tasks repository.TaskRepository, callerID, taskID string) (*model.Task, error) {
	task, err := tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}
