package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaltracker/internal/model"
)

func TestSuggestionInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"forty days", now.AddDate(0, 0, 40), 10},
		{"partial day rounds up first", now.AddDate(0, 0, 9).Add(time.Hour), 2},
		{"three days", now.AddDate(0, 0, 3), 1},
		{"past target", now.AddDate(0, 0, -5), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestionInterval(tt.target, now))
		})
	}
}

func TestStaticPlanner_GeneratePlan(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	target := now.AddDate(0, 2, 0)

	plan := StaticPlanner{}.GeneratePlan(PlanInput{
		Title:       "Ship side project",
		Description: "Launch v1",
		TargetDate:  target,
	}, model.CategoryProfessional, now)

	assert.Equal(t, "Ship side project", plan.Goal.Title)
	assert.Equal(t, "Launch v1", plan.Goal.Description)
	assert.Equal(t, target, plan.Goal.TargetDate)
	assert.Equal(t, model.CategoryProfessional, plan.Goal.Category)

	require.Len(t, plan.Tasks, 4)
	wantPriorities := []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityMedium, model.PriorityHigh}
	for i, task := range plan.Tasks {
		assert.Equal(t, now.AddDate(0, 0, 7*(i+1)), task.DueDate)
		assert.Equal(t, wantPriorities[i], task.Priority)
		assert.Contains(t, task.Description, "Ship side project")
	}
}

func TestStaticPlanner_SuggestTasks(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("personal", func(t *testing.T) {
		goal := &model.Goal{Category: model.CategoryPersonal, TargetDate: now.AddDate(0, 0, 40)}
		tasks := StaticPlanner{}.SuggestTasks(goal, now)

		require.Len(t, tasks, 3)
		assert.Equal(t, "Define what success looks like", tasks[0].Title)
		for i, task := range tasks {
			assert.Equal(t, now.AddDate(0, 0, 10*(i+1)), task.DueDate)
		}
	})

	t.Run("category without templates falls back", func(t *testing.T) {
		goal := &model.Goal{Category: model.CategoryHealth, TargetDate: now.AddDate(0, 0, 2)}
		tasks := StaticPlanner{}.SuggestTasks(goal, now)

		require.Len(t, tasks, 3)
		assert.Equal(t, "Break the goal into steps", tasks[0].Title)
		assert.Equal(t, []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow},
			[]model.Priority{tasks[0].Priority, tasks[1].Priority, tasks[2].Priority})
		for i, task := range tasks {
			assert.Equal(t, now.AddDate(0, 0, i+1), task.DueDate)
		}
	})
}

func TestDayBounds(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 23:30 UTC on the 9th is already the 10th in Berlin.
	now := time.Date(2026, 6, 9, 23, 30, 0, 0, time.UTC)

	start, end := DayBounds(now, berlin)
	assert.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, berlin), start)
	assert.Equal(t, time.Date(2026, 6, 10, 23, 59, 59, int(999*time.Millisecond), berlin), end)

	start, end = DayBounds(now, nil)
	assert.Equal(t, time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 6, 9, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}
