package repository

import (
	"gorm.io/gorm"

	"goaltracker/internal/model"
)

// NewGormSet wires the three GORM repositories onto one connection.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users: NewUserRepository(db),
		Goals: NewGoalRepository(db),
		Tasks: NewTaskRepository(db),
	}
}

// Models lists the GORM models to migrate.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Goal{},
		&model.Task{},
	}
}
