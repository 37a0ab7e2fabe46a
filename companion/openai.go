package companion

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"money-dog-go-be/models"
)

// OpenAI is the alternative provider. The Responses API is stateless here,
// so sessions keep their own history and replay it on every turn.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float64
}

func NewOpenAI(apiKey, model string, temperature float64) *OpenAI {
	o := &OpenAI{model: model, temperature: temperature}
	if apiKey != "" {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		o.client = &client
	}
	return o
}

// NewSession implements ChatClient.
func (o *OpenAI) NewSession(ctx context.Context, systemInstruction string, history []Turn) (ChatSession, error) {
	if o.client == nil {
		return nil, ErrMissingAPIKey
	}
	turns := make([]Turn, len(history))
	copy(turns, history)
	return &openAISession{provider: o, instructions: systemInstruction, history: turns}, nil
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return o.respond(ctx, "", []Turn{{Role: models.RoleUser, Text: prompt}})
}

func (o *OpenAI) respond(ctx context.Context, instructions string, turns []Turn) (string, error) {
	if o.client == nil {
		return "", ErrMissingAPIKey
	}

	items := make([]responses.ResponseInputItemUnionParam, len(turns))
	for i, turn := range turns {
		role := responses.EasyInputMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items[i] = responses.ResponseInputItemParamOfMessage(turn.Text, role)
	}

	params := responses.ResponseNewParams{
		Model:       o.model,
		Temperature: openai.Float(o.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}
	if instructions != "" {
		params.Instructions = openai.String(instructions)
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai respond: %w", err)
	}
	return resp.OutputText(), nil
}

type openAISession struct {
	provider     *OpenAI
	instructions string

	mu      sync.Mutex
	history []Turn
}

func (s *openAISession) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	turns := append(append([]Turn(nil), s.history...), Turn{Role: models.RoleUser, Text: text})
	s.mu.Unlock()

	reply, err := s.provider.respond(ctx, s.instructions, turns)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.history = append(turns, Turn{Role: models.RoleAssistant, Text: reply})
	s.mu.Unlock()
	return reply, nil
}
