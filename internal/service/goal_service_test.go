package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
	"goaltracker/internal/repository"
	"goaltracker/internal/repository/memory"
)

type fixture struct {
	repos repository.Set
	goals GoalService
	tasks TaskService
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.New().Set()
	now := time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

	goals := NewGoalService(repos.Goals, repos.Tasks, nil, nil)
	goals.(*goalService).now = func() time.Time { return now }

	reconciler := NewProgressReconciler(repos.Goals, repos.Tasks, nil)
	tasks := NewTaskService(repos.Goals, repos.Tasks, reconciler, nil, time.UTC, nil)
	tasks.(*taskService).now = func() time.Time { return now }

	return &fixture{repos: repos, goals: goals, tasks: tasks, now: now}
}

func (f *fixture) createGoal(t *testing.T, owner, title string) *model.Goal {
	t.Helper()
	goal, err := f.goals.CreateGoal(context.Background(), owner, GoalInput{
		Title:      title,
		TargetDate: f.now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	return goal
}

func (f *fixture) createTask(t *testing.T, owner, goalID, title string, due time.Time, priority string) *model.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), owner, goalID, TaskInput{
		Title:    title,
		DueDate:  due,
		Priority: priority,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) reloadGoal(t *testing.T, id string) *model.Goal {
	t.Helper()
	goal, err := f.repos.Goals.FindByID(context.Background(), id)
	require.NoError(t, err)
	return goal
}

func TestGoalService_CreateGoal(t *testing.T) {
	f := newFixture(t)

	goal, err := f.goals.CreateGoal(context.Background(), "u1", GoalInput{
		Title:      "  Read 12 books ",
		Category:   "educational",
		TargetDate: f.now.AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, "Read 12 books", goal.Title)
	assert.Equal(t, model.CategoryEducational, goal.Category)
	assert.Equal(t, model.PriorityMedium, goal.Priority)
	assert.Equal(t, "u1", goal.UserID)
	assert.Equal(t, 0, goal.Progress)
	assert.False(t, goal.IsCompleted)
}

func TestGoalService_CreateGoalValidation(t *testing.T) {
	f := newFixture(t)
	target := f.now.AddDate(0, 1, 0)

	tests := []struct {
		name string
		in   GoalInput
	}{
		{"missing title", GoalInput{TargetDate: target}},
		{"missing target date", GoalInput{Title: "x"}},
		{"unknown category", GoalInput{Title: "x", TargetDate: target, Category: "Hobby"}},
		{"unknown priority", GoalInput{Title: "x", TargetDate: target, Priority: "Urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.goals.CreateGoal(context.Background(), "u1", tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestGoalService_ListGoalsScopedToCaller(t *testing.T) {
	f := newFixture(t)
	f.createGoal(t, "u1", "mine")
	f.createGoal(t, "u2", "theirs")

	goals, err := f.goals.ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "mine", goals[0].Title)

	goals, err = f.goals.ListGoals(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, goals)
	assert.Empty(t, goals)
}

func TestGoalService_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "owner", "private")
	title := "hijacked"

	_, err := f.goals.GetGoal(ctx, "intruder", goal.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.goals.UpdateGoal(ctx, "intruder", goal.ID, GoalUpdate{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.goals.CompleteGoal(ctx, "intruder", goal.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.ErrorIs(t, f.goals.DeleteGoal(ctx, "intruder", goal.ID), apperrors.ErrForbidden)

	// nothing changed
	stored := f.reloadGoal(t, goal.ID)
	assert.Equal(t, "private", stored.Title)
	assert.False(t, stored.IsCompleted)

	_, err = f.goals.GetGoal(ctx, "owner", "missing")
	assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)
}

func TestGoalService_UpdateGoal(t *testing.T) {
	f := newFixture(t)
	goal := f.createGoal(t, "u1", "Old title")

	title := "New title"
	priority := "high"
	target := f.now.AddDate(0, 6, 0)
	updated, err := f.goals.UpdateGoal(context.Background(), "u1", goal.ID, GoalUpdate{
		Title:      &title,
		Priority:   &priority,
		TargetDate: &target,
	})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.True(t, target.Equal(updated.TargetDate))
	assert.Equal(t, model.CategoryOther, updated.Category)

	stored := f.reloadGoal(t, goal.ID)
	assert.Equal(t, "New title", stored.Title)
}

func TestGoalService_DeleteGoalCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "u1", "cascade")
	other := f.createGoal(t, "u1", "survivor")
	f.createTask(t, "u1", goal.ID, "a", f.now, "")
	f.createTask(t, "u1", goal.ID, "b", f.now, "")
	kept := f.createTask(t, "u1", other.ID, "c", f.now, "")

	require.NoError(t, f.goals.DeleteGoal(ctx, "u1", goal.ID))

	_, err := f.repos.Goals.FindByID(ctx, goal.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	total, _, err := f.repos.Tasks.CountByGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = f.repos.Tasks.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestGoalService_CompleteGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.createGoal(t, "u1", "finish")
	t1 := f.createTask(t, "u1", goal.ID, "a", f.now, "")
	t2 := f.createTask(t, "u1", goal.ID, "b", f.now, "")

	completed, err := f.goals.CompleteGoal(ctx, "u1", goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, completed.Progress)
	assert.True(t, completed.IsCompleted)

	stored := f.reloadGoal(t, goal.ID)
	assert.Equal(t, 100, stored.Progress)
	assert.True(t, stored.IsCompleted)

	for _, id := range []string{t1.ID, t2.ID} {
		task, err := f.repos.Tasks.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, task.IsCompleted)
	}
}

func TestGoalService_GeneratePlan(t *testing.T) {
	f := newFixture(t)
	target := f.now.AddDate(0, 3, 0)

	plan, err := f.goals.GeneratePlan(context.Background(), PlanInput{
		Title:      "Learn piano",
		TargetDate: target,
		Category:   "personal",
	})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryPersonal, plan.Goal.Category)
	require.Len(t, plan.Tasks, 4)
	assert.Equal(t, f.now.AddDate(0, 0, 7), plan.Tasks[0].DueDate)
	assert.Equal(t, f.now.AddDate(0, 0, 28), plan.Tasks[3].DueDate)

	goals, err := f.goals.ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, goals)

	_, err = f.goals.GeneratePlan(context.Background(), PlanInput{Title: " "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
