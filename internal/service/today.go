package service

import (
	"sort"
	"time"

	"goaltracker/internal/model"
)

// DayBounds returns the first and last millisecond of the calendar day containing now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// sortByPriority orders tasks High, Medium, Low keeping the incoming order for ties.
func sortByPriority(tasks []model.TodayTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
	})
}
