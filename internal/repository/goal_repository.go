package repository

import (
	"context"

	"gorm.io/gorm"

	"goaltracker/internal/model"
)

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GORM goal repository.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

// Create creates a new goal.
func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return translate(r.db.WithContext(ctx).Create(goal).Error)
}

// Update saves every column of an existing goal.
func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	return updateExisting(r.db.WithContext(ctx), goal, goal.ID)
}

// UpdateProgress updates only progress and is_completed.
func (r *goalRepository) UpdateProgress(ctx context.Context, id string, progress int, completed bool) error {
	res := r.db.WithContext(ctx).Model(&model.Goal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":     progress,
			"is_completed": completed,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 affected rows when the values are unchanged, so confirm existence.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Goal{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// FindByID finds a goal by ID.
func (r *goalRepository) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&goal).Error; err != nil {
		return nil, translate(err)
	}
	return &goal, nil
}

// ListByUser lists a user's goals, newest first.
func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]model.Goal, error) {
	goals := []model.Goal{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Delete removes a goal.
func (r *goalRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
