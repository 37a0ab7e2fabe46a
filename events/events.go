package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind names what happened to a goal.
type Kind string

const (
	// KindDepositAccepted fires on every accepted deposit.
	KindDepositAccepted Kind = "deposit_accepted"
	// KindGoalCompleted fires once, on the deposit that reaches the target.
	KindGoalCompleted Kind = "goal_completed"
)

// Event is a celebration signal raised by a deposit.
type Event struct {
	Kind          Kind            `json:"kind"`
	UserID        string          `json:"user_id"`
	GoalID        string          `json:"goal_id"`
	GoalTitle     string          `json:"goal_title"`
	Amount        decimal.Decimal `json:"amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event published by ToJSON.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Notifier delivers events. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// LogNotifier writes events to the log.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(ctx context.Context, e Event) error {
	n.Log.Info("Goal event",
		zap.String("kind", string(e.Kind)),
		zap.String("user_id", e.UserID),
		zap.String("goal_id", e.GoalID),
		zap.String("amount", e.Amount.String()),
		zap.String("current_amount", e.CurrentAmount.String()),
		zap.String("target_amount", e.TargetAmount.String()))
	return nil
}

// Fanout delivers each event to every notifier, even when some fail.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
