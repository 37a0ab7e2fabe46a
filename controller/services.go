package controller

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"money-dog-go-be/companion"
	"money-dog-go-be/events"
	"money-dog-go-be/models"
)

// Services are the collaborators shared by every user's controller.
type Services struct {
	Chat      companion.ChatClient
	Commenter Commenter
	Store     Store
	Notifier  events.Notifier
	Log       *zap.Logger
}

// Factory restores a user's records from the store, if any, and gives the
// user a chat session of their own.
func (s Services) Factory() Factory {
	return func(ctx context.Context, userID uuid.UUID) (*Controller, error) {
		var snapshot *models.Snapshot
		if s.Store != nil {
			loaded, err := s.Store.Load(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("load user %s: %w", userID, err)
			}
			snapshot = loaded
		}

		log := s.Log
		if log == nil {
			log = zap.NewNop()
		}
		return New(ctx, Deps{
			UserID:    userID,
			Chat:      companion.NewSessionManager(s.Chat, log.With(zap.Stringer("user_id", userID))),
			Commenter: s.Commenter,
			Store:     s.Store,
			Notifier:  s.Notifier,
			Log:       log,
			Snapshot:  snapshot,
		}), nil
	}
}
