package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is an actionable item bound to exactly one goal. UserID always equals
// the goal's owner.
type Task struct {
	ID          string    `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	Title       string    `json:"title" bson:"title" gorm:"size:255;not null"`
	Description string    `json:"description" bson:"description" gorm:"type:text"`
	DueDate     time.Time `json:"due_date" bson:"due_date" gorm:"not null;index:idx_tasks_user_due,priority:2"`
	IsCompleted bool      `json:"is_completed" bson:"is_completed" gorm:"not null"`
	Priority    Priority  `json:"priority" bson:"priority" gorm:"size:16;not null"`
	GoalID      string    `json:"goal_id" bson:"goal_id" gorm:"type:varchar(36);not null;index"`
	UserID      string    `json:"user_id" bson:"user_id" gorm:"type:varchar(36);not null;index:idx_tasks_user_due,priority:1"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TodayTask is a task annotated with its goal's title.
type TodayTask struct {
	Task
	GoalTitle string `json:"goal_title"`
}
