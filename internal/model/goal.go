package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal is a user-owned objective. Progress and IsCompleted are derived from
// the goal's tasks by the progress reconciler.
type Goal struct {
	ID          string    `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	Title       string    `json:"title" bson:"title" gorm:"size:255;not null"`
	Description string    `json:"description" bson:"description" gorm:"type:text"`
	Category    Category  `json:"category" bson:"category" gorm:"size:32;not null"`
	TargetDate  time.Time `json:"target_date" bson:"target_date" gorm:"not null"`
	IsCompleted bool      `json:"is_completed" bson:"is_completed" gorm:"not null"`
	Progress    int       `json:"progress" bson:"progress" gorm:"not null"`
	Priority    Priority  `json:"priority" bson:"priority" gorm:"size:16;not null"`
	UserID      string    `json:"user_id" bson:"user_id" gorm:"type:varchar(36);not null;index"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
