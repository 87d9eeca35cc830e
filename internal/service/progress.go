package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"goaltracker/internal/repository"
)

// Reconciler recomputes a goal's derived progress after one of its tasks changed.
type Reconciler interface {
	Reconcile(ctx context.Context, goalID string) error
}

// ProgressReconciler derives Goal.Progress and Goal.IsCompleted from the goal's tasks.
// It is not atomic with concurrent task writes: the last recomputation wins.
type ProgressReconciler struct {
	goals  repository.GoalRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
}

var _ Reconciler = (*ProgressReconciler)(nil)

// NewProgressReconciler creates a reconciler over the goal and task stores.
func NewProgressReconciler(goals repository.GoalRepository, tasks repository.TaskRepository, logger *zap.Logger) *ProgressReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressReconciler{goals: goals, tasks: tasks, logger: logger}
}

// ComputeProgress returns round(100*completed/total) and whether the goal is done.
// A goal without tasks is at 0 and never done.
func ComputeProgress(total, completed int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	progress := int(math.Round(100 * float64(completed) / float64(total)))
	return progress, progress == 100
}

// Reconcile recounts the goal's tasks and persists progress and completion.
// A goal that no longer exists is skipped silently.
func (r *ProgressReconciler) Reconcile(ctx context.Context, goalID string) error {
	total, completed, err := r.tasks.CountByGoal(ctx, goalID)
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	progress, done := ComputeProgress(total, completed)
	if err := r.goals.UpdateProgress(ctx, goalID, progress, done); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Debug("goal gone before reconcile", zap.String("goal_id", goalID))
			return nil
		}
		return fmt.Errorf("update goal progress: %w", err)
	}

	r.logger.Debug("goal progress reconciled",
		zap.String("goal_id", goalID),
		zap.Int64("total", total),
		zap.Int64("completed", completed),
		zap.Int("progress", progress),
	)
	return nil
}
