package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mood is the companion's emotional tag, read by the avatar.
type Mood string

const (
	MoodHappy     Mood = "HAPPY"
	MoodExcited   Mood = "EXCITED"
	MoodListening Mood = "LISTENING"
	MoodWorried   Mood = "WORRIED"
	MoodSleeping  Mood = "SLEEPING"
)

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodExcited, MoodListening, MoodWorried, MoodSleeping:
		return true
	}
	return false
}

// Screen is the active view of the companion app.
type Screen string

const (
	ScreenChat   Screen = "CHAT"
	ScreenDreams Screen = "DREAMS"
	ScreenDiary  Screen = "DIARY"
)

func (s Screen) Valid() bool {
	switch s {
	case ScreenChat, ScreenDreams, ScreenDiary:
		return true
	}
	return false
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SavingsGoal represents a dream the user is saving for.
type SavingsGoal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Title         string          `gorm:"not null" json:"title"`
	TargetAmount  decimal.Decimal `gorm:"type:DECIMAL(20,2)" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:DECIMAL(20,2)" json:"current_amount"`
	Deadline      string          `json:"deadline"`
	CoverImage    string          `json:"cover_image"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Complete reports whether the saved amount has reached the target.
func (g SavingsGoal) Complete() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Progress returns the saved share of the target as a percentage, capped at 100.
func (g SavingsGoal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct.Round(1)
}

// DiaryEntry is one line of the success diary.
type DiaryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AIComment string    `gorm:"type:text" json:"ai_comment,omitempty"`
	CreatedAt time.Time `json:"date"`
}

// ChatMessage is one turn of the conversation with the companion.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Role      Role      `gorm:"not null" json:"role"`
	Text      string    `gorm:"type:text" json:"text"`
	Mood      Mood      `json:"mood,omitempty"` // assistant messages only
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// Snapshot is everything a user has saved so far.
type Snapshot struct {
	Goals        []SavingsGoal
	DiaryEntries []DiaryEntry // newest first
	Messages     []ChatMessage
}
