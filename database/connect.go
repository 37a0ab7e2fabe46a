package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"money-dog-go-be/models"
)

// ConnectDB opens the Postgres database and migrates the companion tables.
func ConnectDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	if !strings.Contains(dsn, "sslmode") {
		dsn += "?sslmode=require" // Fixes Supabase connection refusal
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Connected to database successfully")

	log.Info("Running migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrated successfully")

	return db, nil
}

// Migrate creates or updates the companion tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.SavingsGoal{}, &models.DiaryEntry{}, &models.ChatMessage{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
