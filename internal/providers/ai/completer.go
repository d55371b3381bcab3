package ai

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
)

var (
	ErrEmptyReply = errors.New("provider returned no content")
	ErrProvider   = errors.New("provider error")
)

var api = sonic.ConfigStd

// Completer turns a message list into one reply
type Completer interface {
	Name() string
	Model() string
	Complete(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error)
}

// Provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Default models per provider
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultGoogleModel    = "gemini-1.5-flash"
	DefaultOllamaModel    = "llama3.1"
)

// Token budgets per action
const (
	DefaultMaxTokens  = 1000
	OptimizeMaxTokens = 1500
	ChatMaxTokens     = 2000
)

// splitSystem separates the first system message from the rest
func splitSystem(messages []assistant.Message) (system string, rest []assistant.Message) {
	rest = make([]assistant.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == assistant.RoleSystem && system == "" {
			system = m.Content
			continue
		}
		if m.Role == assistant.RoleSystem {
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// apiError is the error envelope shared by the hosted providers
type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func errorMessage(body []byte) string {
	var e apiError
	if err := api.Unmarshal(body, &e); err == nil && e.Error != nil {
		return e.Error.Message
	}
	return ""
}
