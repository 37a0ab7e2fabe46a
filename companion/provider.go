package companion

import "fmt"

// Provider is a model backend usable for both chat and one-shot prompts.
type Provider interface {
	ChatClient
	Generator
}

// NewProvider returns the backend registered under name ("gemini" or "openai").
func NewProvider(name, apiKey, model string, temperature float64) (Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(apiKey, model, temperature), nil
	case "openai":
		return NewOpenAI(apiKey, model, temperature), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
