package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an authenticated user in the system.
type User struct {
	ID           string `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	Email        string `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" bson:"password_hash" gorm:"size:255;not null"` // Never expose in JSON
	// PasswordChangedAt invalidates tokens issued before it. Nil until the first change.
	PasswordChangedAt *time.Time `json:"-" bson:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// TokenPredatesPasswordChange reports whether a token issued at issuedAt was
// minted before the last password change. Token times have second precision.
func (u *User) TokenPredatesPasswordChange(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(u.PasswordChangedAt.Truncate(time.Second))
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
