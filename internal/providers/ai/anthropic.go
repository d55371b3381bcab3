package ai

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// DefaultSystemPrompt is sent when a conversation has no system message
const DefaultSystemPrompt = "You are a helpful AI assistant."

// Anthropic calls the messages endpoint
type Anthropic struct {
	http    *client.Client
	baseURL string
	key     string
	model   string
}

type anthropicRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	System    string              `json:"system"`
	Messages  []assistant.Message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropic creates an Anthropic completer
func NewAnthropic(c *client.Client, baseURL, key, model string) *Anthropic {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{http: c, baseURL: baseURL, key: key, model: model}
}

func (a *Anthropic) Name() string  { return ProviderAnthropic }
func (a *Anthropic) Model() string { return a.model }

// Complete sends the system prompt separately from the conversation
func (a *Anthropic) Complete(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error) {
	system, rest := splitSystem(messages)
	if system == "" {
		system = DefaultSystemPrompt
	}

	var out anthropicResponse
	resp, err := a.http.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("x-api-key", a.key).
			SetHeader("anthropic-version", anthropicVersion).
			SetHeader("Content-Type", "application/json").
			SetBody(anthropicRequest{Model: a.model, MaxTokens: maxTokens, System: system, Messages: rest}).
			Post(a.baseURL + "/v1/messages")
	})
	if err != nil {
		return "", providerError(ProviderAnthropic, err)
	}
	if err := api.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: anthropic: decode: %v", ErrProvider, err)
	}
	for _, block := range out.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyReply
}
