package db

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"goaltracker/internal/repository"
)

// MySQLStore owns the GORM connection used by STORAGE_DRIVER=mysql.
type MySQLStore struct {
	DB *gorm.DB
}

// NewMySQL returns a connected GORM DB instance with the schema migrated.
func NewMySQL(dsn string) (*MySQLStore, error) {
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err := gormDB.AutoMigrate(repository.Models()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &MySQLStore{DB: gormDB}, nil
}

// Ping checks the underlying connection pool.
func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *MySQLStore) Close(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
