package repository

import (
	"context"
	"errors"
	"time"

	"goaltracker/internal/model"
)

var (
	// ErrNotFound is returned by every repository when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (users.email) is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// GoalRepository defines goal persistence operations.
type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	Update(ctx context.Context, goal *model.Goal) error
	// UpdateProgress writes only the derived progress fields.
	UpdateProgress(ctx context.Context, id string, progress int, completed bool) error
	FindByID(ctx context.Context, id string) (*model.Goal, error)
	// ListByUser returns the user's goals, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Goal, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	// ListByGoal returns the goal's tasks ordered by due date ascending.
	ListByGoal(ctx context.Context, goalID string) ([]model.Task, error)
	// ListByUserDueBetween returns the user's tasks with from <= due_date <= to,
	// ordered by due date ascending.
	ListByUserDueBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Task, error)
	// CountByGoal returns how many tasks are bound to the goal and how many of them are completed.
	CountByGoal(ctx context.Context, goalID string) (total, completed int64, err error)
	Delete(ctx context.Context, id string) error
	DeleteByGoal(ctx context.Context, goalID string) error
	CompleteAllByGoal(ctx context.Context, goalID string) error
}

// Set bundles the three stores backed by one storage client.
type Set struct {
	Users UserRepository
	Goals GoalRepository
	Tasks TaskRepository
}
