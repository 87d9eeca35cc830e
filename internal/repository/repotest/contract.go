// Package repotest holds the behaviour every repository.Set implementation
// must share, run by each driver's tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

// Run exercises set against the shared repository contract. Records are keyed
// by fresh ids so the same database can be reused across runs.
func Run(t *testing.T, set repository.Set) {
	t.Run("users", func(t *testing.T) { users(t, set) })
	t.Run("goals", func(t *testing.T) { goals(t, set) })
	t.Run("tasks", func(t *testing.T) { tasks(t, set) })
	t.Run("update after delete", func(t *testing.T) { updateAfterDelete(t, set) })
}

func users(t *testing.T, set repository.Set) {
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	user := &model.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, set.Users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	err := set.Users.Create(ctx, &model.User{Email: email, PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	byEmail, err := set.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Nil(t, byEmail.PasswordChangedAt)

	changedAt := time.Now().UTC().Truncate(time.Second)
	byEmail.PasswordHash = "rehashed"
	byEmail.PasswordChangedAt = &changedAt
	require.NoError(t, set.Users.Update(ctx, byEmail))

	byID, err := set.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rehashed", byID.PasswordHash)
	require.NotNil(t, byID.PasswordChangedAt)
	assert.True(t, changedAt.Equal(*byID.PasswordChangedAt))

	second := &model.User{Email: uuid.NewString() + "@example.com", PasswordHash: "hash"}
	require.NoError(t, set.Users.Create(ctx, second))
	second.Email = email
	assert.ErrorIs(t, set.Users.Update(ctx, second), repository.ErrDuplicate)

	_, err = set.Users.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = set.Users.FindByEmail(ctx, uuid.NewString()+"@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func goals(t *testing.T, set repository.Set) {
	ctx := context.Background()
	userID := uuid.NewString()
	target := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	older := &model.Goal{Title: "older", Category: model.CategoryHealth, TargetDate: target, Priority: model.PriorityLow, UserID: userID}
	require.NoError(t, set.Goals.Create(ctx, older))
	// created_at is stored with millisecond precision
	time.Sleep(10 * time.Millisecond)
	newer := &model.Goal{Title: "newer", Category: model.CategoryProfessional, TargetDate: target, Priority: model.PriorityHigh, UserID: userID}
	require.NoError(t, set.Goals.Create(ctx, newer))
	require.NoError(t, set.Goals.Create(ctx, &model.Goal{Title: "foreign", Category: model.CategoryProfessional, TargetDate: target, Priority: model.PriorityHigh, UserID: uuid.NewString()}))

	listed, err := set.Goals.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer", listed[0].Title)
	assert.Equal(t, "older", listed[1].Title)

	empty, err := set.Goals.ListByUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	older.Title = "renamed"
	older.Priority = model.PriorityMedium
	require.NoError(t, set.Goals.Update(ctx, older))

	require.NoError(t, set.Goals.UpdateProgress(ctx, older.ID, 40, false))
	// unchanged values still count as an existing row
	require.NoError(t, set.Goals.UpdateProgress(ctx, older.ID, 40, false))

	got, err := set.Goals.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Equal(t, 40, got.Progress)
	assert.False(t, got.IsCompleted)
	assert.True(t, target.Equal(got.TargetDate))

	assert.ErrorIs(t, set.Goals.UpdateProgress(ctx, uuid.NewString(), 10, false), repository.ErrNotFound)

	require.NoError(t, set.Goals.Delete(ctx, older.ID))
	assert.ErrorIs(t, set.Goals.Delete(ctx, older.ID), repository.ErrNotFound)
	_, err = set.Goals.FindByID(ctx, older.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func tasks(t *testing.T, set repository.Set) {
	ctx := context.Background()
	userID := uuid.NewString()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	endOfDay := day.Add(24*time.Hour - time.Millisecond)

	goal := &model.Goal{Title: "Run", Category: model.CategoryHealth, TargetDate: day.AddDate(0, 1, 0), Priority: model.PriorityHigh, UserID: userID}
	require.NoError(t, set.Goals.Create(ctx, goal))
	other := &model.Goal{Title: "Read", Category: model.CategoryPersonal, TargetDate: day.AddDate(0, 1, 0), Priority: model.PriorityLow, UserID: userID}
	require.NoError(t, set.Goals.Create(ctx, other))

	newTask := func(title string, goal *model.Goal, due time.Time, done bool) *model.Task {
		task := &model.Task{Title: title, DueDate: due, IsCompleted: done, Priority: model.PriorityMedium, GoalID: goal.ID, UserID: goal.UserID}
		require.NoError(t, set.Tasks.Create(ctx, task))
		return task
	}
	late := newTask("late", goal, day.Add(20*time.Hour), false)
	newTask("start of day", goal, day, true)
	newTask("next day", goal, day.AddDate(0, 0, 1), false)
	newTask("other goal", other, endOfDay, false)

	listed, err := set.Tasks.ListByGoal(ctx, goal.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"start of day", "late", "next day"}, titles(listed))

	inDay, err := set.Tasks.ListByUserDueBetween(ctx, userID, day, endOfDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"start of day", "late", "other goal"}, titles(inDay))

	foreign, err := set.Tasks.ListByUserDueBetween(ctx, uuid.NewString(), day, endOfDay)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	total, completed, err := set.Tasks.CountByGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), completed)

	total, completed, err = set.Tasks.CountByGoal(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, completed)

	late.IsCompleted = true
	require.NoError(t, set.Tasks.Update(ctx, late))
	_, completed, err = set.Tasks.CountByGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completed)

	require.NoError(t, set.Tasks.CompleteAllByGoal(ctx, goal.ID))
	total, completed, err = set.Tasks.CountByGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, total, completed)

	require.NoError(t, set.Tasks.Delete(ctx, late.ID))
	assert.ErrorIs(t, set.Tasks.Delete(ctx, late.ID), repository.ErrNotFound)

	require.NoError(t, set.Tasks.DeleteByGoal(ctx, goal.ID))
	listed, err = set.Tasks.ListByGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	remaining, err := set.Tasks.ListByGoal(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

// updateAfterDelete covers a write that loses a race with a cascade delete:
// it must fail rather than bring the record back.
func updateAfterDelete(t *testing.T, set repository.Set) {
	ctx := context.Background()
	userID := uuid.NewString()
	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	goal := &model.Goal{Title: "Ship", Category: model.CategoryProfessional, TargetDate: due, Priority: model.PriorityHigh, UserID: userID}
	require.NoError(t, set.Goals.Create(ctx, goal))
	task := &model.Task{Title: "Draft", DueDate: due, Priority: model.PriorityLow, GoalID: goal.ID, UserID: userID}
	require.NoError(t, set.Tasks.Create(ctx, task))

	require.NoError(t, set.Tasks.DeleteByGoal(ctx, goal.ID))
	require.NoError(t, set.Goals.Delete(ctx, goal.ID))

	task.IsCompleted = true
	assert.ErrorIs(t, set.Tasks.Update(ctx, task), repository.ErrNotFound)
	_, err := set.Tasks.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	goal.Title = "Shipped"
	assert.ErrorIs(t, set.Goals.Update(ctx, goal), repository.ErrNotFound)
	_, err = set.Goals.FindByID(ctx, goal.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ghost := &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, set.Users.Update(ctx, ghost), repository.ErrNotFound)
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}
