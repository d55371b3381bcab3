package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

const openAIBaseURL = "https://api.openai.com"

// OpenAI calls the chat completions endpoint
type OpenAI struct {
	http        *client.Client
	baseURL     string
	key         string
	model       string
	temperature float64
}

type openAIRequest struct {
	Model       string              `json:"model"`
	Messages    []assistant.Message `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message assistant.Message `json:"message"`
	} `json:"choices"`
}

// NewOpenAI creates an OpenAI completer. An empty baseURL uses the public API.
func NewOpenAI(c *client.Client, baseURL, key, model string, temperature float64) *OpenAI {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{http: c, baseURL: baseURL, key: key, model: model, temperature: temperature}
}

func (o *OpenAI) Name() string  { return ProviderOpenAI }
func (o *OpenAI) Model() string { return o.model }

// Complete sends messages and returns the first choice
func (o *OpenAI) Complete(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error) {
	var out openAIResponse
	resp, err := o.http.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetAuthToken(o.key).
			SetHeader("Content-Type", "application/json").
			SetBody(openAIRequest{
				Model:       o.model,
				Messages:    messages,
				MaxTokens:   maxTokens,
				Temperature: o.temperature,
			}).
			Post(o.baseURL + "/v1/chat/completions")
	})
	if err != nil {
		return "", providerError(ProviderOpenAI, err)
	}
	if err := api.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: openai: decode: %v", ErrProvider, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}

// providerError unwraps the API error message from a status error
func providerError(name string, err error) error {
	var se *client.StatusError
	if errors.As(err, &se) {
		if msg := errorMessage([]byte(se.Body)); msg != "" {
			return fmt.Errorf("%w: %s: %s (status %d)", ErrProvider, name, msg, se.Code)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrProvider, name, err)
}
