package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"goaltracker/internal/model"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new GORM task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error)
}

// Update saves every column of an existing task.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return updateExisting(r.db.WithContext(ctx), task, task.ID)
}

// FindByID finds a task by ID.
func (r *taskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// ListByGoal finds all tasks for a goal ordered by due date.
func (r *taskRepository) ListByGoal(ctx context.Context, goalID string) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).Where("goal_id = ?", goalID).
		Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByUserDueBetween finds a user's tasks due inside [from, to].
func (r *taskRepository) ListByUserDueBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_date >= ? AND due_date <= ?", userID, from, to).
		Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByGoal counts total and completed tasks of a goal in one query.
func (r *taskRepository) CountByGoal(ctx context.Context, goalID string) (int64, int64, error) {
	var row struct {
		Total     int64
		Completed int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed").
		Where("goal_id = ?", goalID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Completed, nil
}

// Delete removes a task.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByGoal removes every task bound to a goal.
func (r *taskRepository) DeleteByGoal(ctx context.Context, goalID string) error {
	return r.db.WithContext(ctx).Where("goal_id = ?", goalID).Delete(&model.Task{}).Error
}

// CompleteAllByGoal marks every task of a goal as completed.
func (r *taskRepository) CompleteAllByGoal(ctx context.Context, goalID string) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("goal_id = ?", goalID).
		Updates(map[string]interface{}{
			"is_completed": true,
			"updated_at":   time.Now(),
		}).Error
}
