package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"money-dog-go-be/models"
)

// Store keeps each user's goals, diary and conversation in Postgres.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load returns goals oldest first, diary newest first and messages in
// conversation order.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*models.Snapshot, error) {
	db := s.db.WithContext(ctx)
	var snapshot models.Snapshot

	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&snapshot.Goals).Error; err != nil {
		return nil, fmt.Errorf("fetch goals: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&snapshot.DiaryEntries).Error; err != nil {
		return nil, fmt.Errorf("fetch diary entries: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Order("timestamp ASC").Find(&snapshot.Messages).Error; err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return &snapshot, nil
}

// SaveGoal inserts or updates a goal.
func (s *Store) SaveGoal(ctx context.Context, goal *models.SavingsGoal) error {
	if err := s.db.WithContext(ctx).Save(goal).Error; err != nil {
		return fmt.Errorf("save goal %s: %w", goal.ID, err)
	}
	return nil
}

func (s *Store) SaveDiaryEntry(ctx context.Context, entry *models.DiaryEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create diary entry: %w", err)
	}
	return nil
}

func (s *Store) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}
