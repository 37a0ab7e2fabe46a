// Package controller holds one user's companion state and routes their
// actions: chatting, saving toward goals and writing the success diary.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"money-dog-go-be/companion"
	"money-dog-go-be/events"
	"money-dog-go-be/models"
)

// Rejected input leaves all state untouched.
var (
	ErrBlankText     = errors.New("text is blank")
	ErrInvalidTitle  = errors.New("goal title is empty")
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrInvalidScreen = errors.New("unknown screen")
	ErrSendInFlight  = errors.New("a message is already being answered")
)

const (
	DefaultDeadline = "未定"
	coverImageURL   = "https://picsum.photos/400/200?random=%d"
)

// DiarySuggestions are quick-fill phrases offered on the diary screen.
var DiarySuggestions = []string{"今天我没有乱花钱", "坚持记账了", "为了梦想存了钱"}

// Chatter is the conversation backend; see companion.SessionManager.
type Chatter interface {
	Initialize(ctx context.Context, goals []models.SavingsGoal, entries []models.DiaryEntry) error
	Send(ctx context.Context, text string) string
}

// Commenter produces the AI comment attached to a diary entry.
type Commenter interface {
	Comment(ctx context.Context, content string) string
}

// Store persists a user's records. Save errors never roll back memory.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*models.Snapshot, error)
	SaveGoal(ctx context.Context, goal *models.SavingsGoal) error
	SaveDiaryEntry(ctx context.Context, entry *models.DiaryEntry) error
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Deps wires a Controller. Store and Notifier are optional.
type Deps struct {
	UserID    uuid.UUID
	Chat      Chatter
	Commenter Commenter
	Store     Store
	Notifier  events.Notifier
	Log       *zap.Logger
	Snapshot  *models.Snapshot
	Now       func() time.Time
}

// DepositResult reports the goal after a deposit and whether it just
// reached its target.
type DepositResult struct {
	Goal      models.SavingsGoal
	Completed bool
}

// Controller owns one user's collections, companion mood and active screen.
// The mutex is never held across a model call.
type Controller struct {
	userID    uuid.UUID
	chat      Chatter
	commenter Commenter
	store     Store
	notifier  events.Notifier
	log       *zap.Logger
	now       func() time.Time

	// persistMu orders goal writes so the store sees them in the same
	// order as memory. Taken before mu.
	persistMu sync.Mutex

	mu       sync.Mutex
	messages []models.ChatMessage
	goals    []models.SavingsGoal
	diary    []models.DiaryEntry // newest first
	mood     models.Mood
	screen   models.Screen
	sending  bool

	// Counts the chat context was last built from.
	contextGoals int
	contextDiary int
}

// New builds a controller, restoring the snapshot if given, and opens the
// first chat session. A failed session open is retried on the first send.
func New(ctx context.Context, deps Deps) *Controller {
	c := &Controller{
		userID:    deps.UserID,
		chat:      deps.Chat,
		commenter: deps.Commenter,
		store:     deps.Store,
		notifier:  deps.Notifier,
		log:       deps.Log,
		now:       deps.Now,
		mood:      models.MoodHappy,
		screen:    models.ScreenChat,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.Stringer("user_id", deps.UserID))
	if c.now == nil {
		c.now = time.Now
	}
	if s := deps.Snapshot; s != nil {
		c.goals = append(c.goals, s.Goals...)
		c.diary = append(c.diary, s.DiaryEntries...)
		c.messages = append(c.messages, s.Messages...)
	}
	if len(c.messages) == 0 {
		greeting := models.ChatMessage{
			ID:        uuid.New(),
			UserID:    c.userID,
			Role:      models.RoleAssistant,
			Text:      companion.Greeting,
			Mood:      models.MoodHappy,
			Timestamp: c.now(),
		}
		c.messages = append(c.messages, greeting)
		c.persistMessage(ctx, greeting)
	}

	c.contextGoals, c.contextDiary = len(c.goals), len(c.diary)
	_ = c.chat.Initialize(ctx, c.Goals(), c.DiaryEntries())
	return c
}

// PostUserMessage records text, asks the companion and records its reply.
// It returns the assistant message.
func (c *Controller) PostUserMessage(ctx context.Context, text string) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrBlankText
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return models.ChatMessage{}, ErrSendInFlight
	}
	userMsg := models.ChatMessage{
		ID:        uuid.New(),
		UserID:    c.userID,
		Role:      models.RoleUser,
		Text:      text,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, userMsg)
	c.mood = models.MoodListening
	c.sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	c.persistMessage(ctx, userMsg)

	reply := c.chat.Send(ctx, text)
	mood := companion.ClassifyMood(reply)

	c.mu.Lock()
	replyMsg := models.ChatMessage{
		ID:        uuid.New(),
		UserID:    c.userID,
		Role:      models.RoleAssistant,
		Text:      reply,
		Mood:      mood,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, replyMsg)
	c.mood = mood
	c.mu.Unlock()

	c.persistMessage(ctx, replyMsg)
	return replyMsg, nil
}

// CreateGoal adds a savings goal with nothing saved yet. targetAmount is raw
// user input; an empty deadline means undecided.
func (c *Controller) CreateGoal(ctx context.Context, title, targetAmount, deadline string) (models.SavingsGoal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.SavingsGoal{}, ErrInvalidTitle
	}
	target, err := parseAmount(targetAmount)
	if err != nil {
		return models.SavingsGoal{}, err
	}
	if strings.TrimSpace(deadline) == "" {
		deadline = DefaultDeadline
	}

	now := c.now()
	goal := models.SavingsGoal{
		ID:            uuid.New(),
		UserID:        c.userID,
		Title:         title,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
		CoverImage:    fmt.Sprintf(coverImageURL, now.UnixMilli()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	c.persistMu.Lock()
	c.mu.Lock()
	c.goals = append(c.goals, goal)
	c.mu.Unlock()
	c.saveGoal(ctx, goal)
	c.persistMu.Unlock()

	c.log.Info("Goal created", zap.Stringer("goal_id", goal.ID), zap.String("target", target.String()))

	c.refreshContext(ctx)
	return goal, nil
}

// Deposit adds amount to a goal. Completed is true only on the deposit that
// first brings the goal to its target.
func (c *Controller) Deposit(ctx context.Context, goalID uuid.UUID, amount string) (DepositResult, error) {
	value, err := parseAmount(amount)
	if err != nil {
		return DepositResult{}, err
	}

	c.persistMu.Lock()
	result, err := c.applyDeposit(goalID, value)
	if err == nil {
		c.saveGoal(ctx, result.Goal)
	}
	c.persistMu.Unlock()
	if err != nil {
		return DepositResult{}, err
	}

	c.notify(ctx, events.KindDepositAccepted, result.Goal, value)
	if result.Completed {
		c.log.Info("Goal completed", zap.Stringer("goal_id", goalID))
		c.notify(ctx, events.KindGoalCompleted, result.Goal, value)
	}
	return result, nil
}

func (c *Controller) applyDeposit(goalID uuid.UUID, value decimal.Decimal) (DepositResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.goalIndex(goalID)
	if idx < 0 {
		return DepositResult{}, ErrGoalNotFound
	}
	goal := &c.goals[idx]
	total := goal.CurrentAmount.Add(value)
	if !fitsAmountColumn(total) {
		return DepositResult{}, ErrInvalidAmount
	}
	wasComplete := goal.Complete()
	goal.CurrentAmount = total
	goal.UpdatedAt = c.now()
	return DepositResult{
		Goal:      *goal,
		Completed: !wasComplete && goal.Complete(),
	}, nil
}

// SaveDiaryEntry asks the companion for a comment and prepends the entry.
func (c *Controller) SaveDiaryEntry(ctx context.Context, content string) (models.DiaryEntry, error) {
	if strings.TrimSpace(content) == "" {
		return models.DiaryEntry{}, ErrBlankText
	}

	c.setMood(models.MoodListening)
	comment := c.commenter.Comment(ctx, content)

	entry := models.DiaryEntry{
		ID:        uuid.New(),
		UserID:    c.userID,
		Content:   content,
		AIComment: comment,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.mood = models.MoodExcited
	c.diary = append([]models.DiaryEntry{entry}, c.diary...)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveDiaryEntry(ctx, &entry); err != nil {
			c.log.Error("Failed to save diary entry", zap.Stringer("entry_id", entry.ID), zap.Error(err))
		}
	}

	c.refreshContext(ctx)
	return entry, nil
}

// Navigate switches the active screen. In-flight requests keep running.
func (c *Controller) Navigate(screen models.Screen) error {
	if !screen.Valid() {
		return ErrInvalidScreen
	}
	c.mu.Lock()
	c.screen = screen
	c.mu.Unlock()
	return nil
}

func (c *Controller) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

func (c *Controller) Goals() []models.SavingsGoal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SavingsGoal(nil), c.goals...)
}

// DiaryEntries returns the diary, newest first.
func (c *Controller) DiaryEntries() []models.DiaryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.DiaryEntry(nil), c.diary...)
}

func (c *Controller) Mood() models.Mood {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mood
}

func (c *Controller) Screen() models.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Sending reports whether a reply is being composed.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func (c *Controller) setMood(m models.Mood) {
	c.mu.Lock()
	c.mood = m
	c.mu.Unlock()
}

func (c *Controller) goalIndex(id uuid.UUID) int {
	for i := range c.goals {
		if c.goals[i].ID == id {
			return i
		}
	}
	return -1
}

// refreshContext reopens the chat session when the number of goals or diary
// entries changed since it was built. Edits to existing records do not count.
func (c *Controller) refreshContext(ctx context.Context) {
	c.mu.Lock()
	if len(c.goals) == c.contextGoals && len(c.diary) == c.contextDiary {
		c.mu.Unlock()
		return
	}
	c.contextGoals, c.contextDiary = len(c.goals), len(c.diary)
	goals := append([]models.SavingsGoal(nil), c.goals...)
	diary := append([]models.DiaryEntry(nil), c.diary...)
	c.mu.Unlock()

	_ = c.chat.Initialize(ctx, goals, diary)
}

// saveGoal is called with persistMu held.
func (c *Controller) saveGoal(ctx context.Context, goal models.SavingsGoal) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveGoal(ctx, &goal); err != nil {
		c.log.Error("Failed to save goal", zap.Stringer("goal_id", goal.ID), zap.Error(err))
	}
}

func (c *Controller) persistMessage(ctx context.Context, msg models.ChatMessage) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveMessage(ctx, &msg); err != nil {
		c.log.Error("Failed to save message", zap.Stringer("message_id", msg.ID), zap.Error(err))
	}
}

func (c *Controller) notify(ctx context.Context, kind events.Kind, goal models.SavingsGoal, amount decimal.Decimal) {
	if c.notifier == nil {
		return
	}
	err := c.notifier.Notify(ctx, events.Event{
		Kind:          kind,
		UserID:        c.userID.String(),
		GoalID:        goal.ID.String(),
		GoalTitle:     goal.Title,
		Amount:        amount,
		CurrentAmount: goal.CurrentAmount,
		TargetAmount:  goal.TargetAmount,
		Timestamp:     c.now(),
	})
	if err != nil {
		c.log.Warn("Failed to deliver goal event", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Amounts must fit the DECIMAL(20,2) columns they are stored in.
const (
	amountScale         = 2
	amountIntegerDigits = 18
	maxAmountInput      = 32
)

// parseAmount accepts a positive decimal number typed by the user. The input
// length is capped first so exponent forms cannot blow up arithmetic.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxAmountInput {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || !value.IsPositive() || !fitsAmountColumn(value) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return value, nil
}

// fitsAmountColumn reports whether d has at most 18 integer digits and 2
// decimal places. The digit count is taken from the coefficient and exponent
// so huge exponents are rejected without being expanded.
func fitsAmountColumn(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if d.NumDigits()+exp > amountIntegerDigits {
		return false
	}
	if exp >= -amountScale {
		return true
	}
	if exp < -(amountScale + maxAmountInput) {
		return false
	}
	return d.Equal(d.Truncate(amountScale))
}
