package companion

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"money-dog-go-be/models"
)

// Turn is one message of seed history handed to a new chat session.
type Turn struct {
	Role models.Role
	Text string
}

// ChatClient opens multi-turn sessions against a language model.
type ChatClient interface {
	NewSession(ctx context.Context, systemInstruction string, history []Turn) (ChatSession, error)
}

// ChatSession is a live conversation with the model.
type ChatSession interface {
	Send(ctx context.Context, text string) (string, error)
}

const (
	// Greeting is Money's opening line, shown first in every conversation.
	Greeting = "你好呀！我是钱钱。很高兴见到你！我们要一起为了梦想努力哦，汪！"

	FallbackConnectionLost = "汪呜... 我好像有点晕（连接失败）。"
	FallbackTired          = "汪呜... 我现在有点累，稍后再聊吧。"
	FallbackUnheard        = "汪？我没听清..."
)

// SeedHistory is the greeting exchange every session starts from.
var SeedHistory = []Turn{
	{Role: models.RoleUser, Text: "钱钱，你好！我来了。"},
	{Role: models.RoleAssistant, Text: "你好呀！我是钱钱。很高兴见到你！我们要一起为了梦想努力哦，汪！你想先聊聊你的梦想，还是记录今天的成功日记呢？"},
}

// SessionState is the lifecycle state of a SessionManager.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateActive
)

func (s SessionState) String() string {
	if s == StateActive {
		return "active"
	}
	return "uninitialized"
}

// SessionManager owns at most one chat session. It does not serialize
// Send calls; callers keep a single send in flight.
type SessionManager struct {
	client ChatClient
	log    *zap.Logger

	mu      sync.Mutex
	state   SessionState
	session ChatSession
}

func NewSessionManager(client ChatClient, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{client: client, log: log}
}

// State reports whether a session is currently open.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialize opens a fresh session seeded with the user's goals and diary.
// On failure the previous state is kept and the error is only logged and
// returned; Send retries lazily.
func (m *SessionManager) Initialize(ctx context.Context, goals []models.SavingsGoal, entries []models.DiaryEntry) error {
	instruction := BuildContext(goals, entries)
	session, err := m.client.NewSession(ctx, instruction, SeedHistory)
	if err != nil {
		m.log.Error("Failed to initialize chat session", zap.Error(err))
		return err
	}

	m.mu.Lock()
	m.session = session
	m.state = StateActive
	m.mu.Unlock()

	m.log.Debug("Chat session initialized",
		zap.Int("goals", len(goals)),
		zap.Int("diary_entries", len(entries)))
	return nil
}

// Send forwards text to the active session and returns the reply. It never
// fails: errors become one of the fallback lines.
func (m *SessionManager) Send(ctx context.Context, text string) string {
	session := m.current()
	if session == nil {
		// Lost or never opened; try once with an empty context.
		_ = m.Initialize(ctx, nil, nil)
		session = m.current()
	}
	if session == nil {
		return FallbackConnectionLost
	}

	reply, err := session.Send(ctx, text)
	if err != nil {
		m.log.Error("Chat send failed", zap.Error(err))
		return FallbackTired
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackUnheard
	}
	return reply
}

func (m *SessionManager) current() ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return nil
	}
	return m.session
}
