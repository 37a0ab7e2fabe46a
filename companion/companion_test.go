package companion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-dog-go-be/models"
)

type fakeSession struct {
	reply string
	err   error
	sent  []string
}

func (s *fakeSession) Send(ctx context.Context, text string) (string, error) {
	s.sent = append(s.sent, text)
	return s.reply, s.err
}

type fakeChatClient struct {
	session      *fakeSession
	err          error
	calls        int
	instructions []string
	history      []Turn
}

func (c *fakeChatClient) NewSession(ctx context.Context, instruction string, history []Turn) (ChatSession, error) {
	c.calls++
	c.instructions = append(c.instructions, instruction)
	c.history = history
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func TestBuildContextEmpty(t *testing.T) {
	got := BuildContext(nil, nil)

	assert.True(t, strings.HasPrefix(got, Persona))
	assert.Contains(t, got, NoGoalsNote)
	assert.Contains(t, got, NoDiaryNote)
}

func TestBuildContextWithGoal(t *testing.T) {
	goals := []models.SavingsGoal{{
		Title:         "Trip",
		TargetAmount:  decimal.NewFromInt(5000),
		CurrentAmount: decimal.Zero,
	}}

	got := BuildContext(goals, nil)

	assert.Contains(t, got, "Trip (目标:5000, 当前:0)")
	assert.NotContains(t, got, NoGoalsNote)
}

func TestBuildContextJoinsGoals(t *testing.T) {
	goals := []models.SavingsGoal{
		{Title: "Trip", TargetAmount: decimal.NewFromInt(5000), CurrentAmount: decimal.NewFromInt(100)},
		{Title: "Bike", TargetAmount: decimal.RequireFromString("899.5"), CurrentAmount: decimal.Zero},
	}

	got := BuildContext(goals, nil)

	assert.Contains(t, got, "主人目前的梦想是：Trip (目标:5000, 当前:100), Bike (目标:899.5, 当前:0)。")
}

func TestBuildContextUsesThreeMostRecentEntries(t *testing.T) {
	entries := []models.DiaryEntry{
		{Content: "d4"}, {Content: "d3"}, {Content: "d2"}, {Content: "d1"},
	}

	got := BuildContext(nil, entries)

	assert.Contains(t, got, "主人最近的成功日记：d4; d3; d2。")
	assert.NotContains(t, got, "d1")
}

func TestClassifyMood(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Mood
	}{
		{"praise", "你真棒！汪！", models.MoodExcited},
		{"praise variant", "太好了", models.MoodExcited},
		{"concern", "我有点担心你的花销", models.MoodWorried},
		{"concern variant", "哎呀，又买零食了", models.MoodWorried},
		{"no markers", "我们一起加油吧", models.MoodHappy},
		{"empty", "", models.MoodHappy},
		{"both markers resolve to first rule", "别担心，你已经很棒了", models.MoodExcited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMood(tt.text))
		})
	}
}

func TestSessionManagerInitialize(t *testing.T) {
	client := &fakeChatClient{session: &fakeSession{reply: "汪！"}}
	m := NewSessionManager(client, nil)
	assert.Equal(t, StateUninitialized, m.State())

	goals := []models.SavingsGoal{{Title: "Trip", TargetAmount: decimal.NewFromInt(5000)}}
	require.NoError(t, m.Initialize(context.Background(), goals, nil))

	assert.Equal(t, StateActive, m.State())
	require.Len(t, client.instructions, 1)
	assert.Contains(t, client.instructions[0], "Trip")
	assert.Equal(t, SeedHistory, client.history)
}

func TestSessionManagerInitializeFailureStaysUninitialized(t *testing.T) {
	client := &fakeChatClient{err: errors.New("401 unauthorized")}
	m := NewSessionManager(client, nil)

	err := m.Initialize(context.Background(), nil, nil)

	assert.Error(t, err)
	assert.Equal(t, StateUninitialized, m.State())
}

func TestSessionManagerFailedReinitializeKeepsSession(t *testing.T) {
	session := &fakeSession{reply: "还在这里"}
	client := &fakeChatClient{session: session}
	m := NewSessionManager(client, nil)
	require.NoError(t, m.Initialize(context.Background(), nil, nil))

	client.err = errors.New("network down")
	assert.Error(t, m.Initialize(context.Background(), nil, nil))

	assert.Equal(t, StateActive, m.State())
	assert.Equal(t, "还在这里", m.Send(context.Background(), "hi"))
}

func TestSessionManagerSend(t *testing.T) {
	t.Run("returns reply", func(t *testing.T) {
		session := &fakeSession{reply: "你好！汪！"}
		m := NewSessionManager(&fakeChatClient{session: session}, nil)
		require.NoError(t, m.Initialize(context.Background(), nil, nil))

		assert.Equal(t, "你好！汪！", m.Send(context.Background(), "你好"))
		assert.Equal(t, []string{"你好"}, session.sent)
	})

	t.Run("empty reply becomes placeholder", func(t *testing.T) {
		m := NewSessionManager(&fakeChatClient{session: &fakeSession{reply: "  "}}, nil)
		require.NoError(t, m.Initialize(context.Background(), nil, nil))

		assert.Equal(t, FallbackUnheard, m.Send(context.Background(), "你好"))
	})

	t.Run("send error becomes tired apology", func(t *testing.T) {
		m := NewSessionManager(&fakeChatClient{session: &fakeSession{err: errors.New("503")}}, nil)
		require.NoError(t, m.Initialize(context.Background(), nil, nil))

		assert.Equal(t, FallbackTired, m.Send(context.Background(), "你好"))
	})
}

func TestSessionManagerSendLazyInitialize(t *testing.T) {
	t.Run("one attempt then connection-lost apology", func(t *testing.T) {
		client := &fakeChatClient{err: errors.New("no key")}
		m := NewSessionManager(client, nil)

		assert.Equal(t, FallbackConnectionLost, m.Send(context.Background(), "在吗"))
		assert.Equal(t, 1, client.calls)

		assert.Equal(t, FallbackConnectionLost, m.Send(context.Background(), "在吗"))
		assert.Equal(t, 2, client.calls)
	})

	t.Run("lazy session uses empty context", func(t *testing.T) {
		session := &fakeSession{reply: "汪！"}
		client := &fakeChatClient{session: session}
		m := NewSessionManager(client, nil)

		assert.Equal(t, "汪！", m.Send(context.Background(), "在吗"))
		assert.Equal(t, 1, client.calls)
		assert.Contains(t, client.instructions[0], NoGoalsNote)
		assert.Equal(t, StateActive, m.State())
	})
}

func TestDiaryCommenter(t *testing.T) {
	t.Run("embeds content in prompt", func(t *testing.T) {
		gen := &fakeGenerator{reply: "你真了不起！汪！"}
		c := NewDiaryCommenter(gen, nil)

		assert.Equal(t, "你真了不起！汪！", c.Comment(context.Background(), "今天我没有乱花钱"))
		assert.Equal(t, "用户写了一条成功日记：“今天我没有乱花钱”。作为小狗钱钱，请用一句温暖鼓励的话评价它，并以“汪！”结尾。", gen.prompt)
	})

	t.Run("empty reply", func(t *testing.T) {
		c := NewDiaryCommenter(&fakeGenerator{}, nil)
		assert.Equal(t, FallbackCommentEmpty, c.Comment(context.Background(), "x"))
	})

	t.Run("failure", func(t *testing.T) {
		c := NewDiaryCommenter(&fakeGenerator{err: errors.New("quota")}, nil)
		assert.Equal(t, FallbackCommentFailed, c.Comment(context.Background(), "x"))
	})
}

func TestProvidersWithoutKey(t *testing.T) {
	for _, name := range []string{"gemini", "openai"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(name, "", "model", 0.7)
			require.NoError(t, err)

			_, err = p.NewSession(context.Background(), "persona", SeedHistory)
			assert.ErrorIs(t, err, ErrMissingAPIKey)

			_, err = p.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, ErrMissingAPIKey)
		})
	}

	_, err := NewProvider("claude", "k", "m", 0.7)
	assert.Error(t, err)
}

func TestSessionManagerWithoutKeyFallsBack(t *testing.T) {
	m := NewSessionManager(NewGemini("", "gemini-2.5-flash", 0.7), nil)

	assert.Equal(t, FallbackConnectionLost, m.Send(context.Background(), "你好"))
	assert.Equal(t, StateUninitialized, m.State())
}
