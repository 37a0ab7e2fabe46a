package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"money-dog-go-be/models"
)

var ErrMissingAPIKey = errors.New("API key not set")

// Gemini talks to Google's Gemini API. The client is created on first use
// so a missing or bad key surfaces as a session initialization failure.
type Gemini struct {
	apiKey      string
	model       string
	temperature float32

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(apiKey, model string, temperature float64) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, temperature: float32(temperature)}
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// NewSession implements ChatClient.
func (g *Gemini) NewSession(ctx context.Context, systemInstruction string, history []Turn) (ChatSession, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(history))
	for i, turn := range history {
		contents[i] = genai.NewContentFromText(turn.Text, geminiRole(turn.Role))
	}

	temperature := g.temperature
	chat, err := client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}, contents)
	if err != nil {
		return nil, fmt.Errorf("create gemini chat: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp), nil
}

type geminiSession struct {
	chat *genai.Chat
}

func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("gemini send: %w", err)
	}
	return responseText(resp), nil
}

func geminiRole(role models.Role) genai.Role {
	if role == models.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
