package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

// Ollama calls a local Ollama server's chat endpoint
type Ollama struct {
	http        *client.Client
	baseURL     string
	model       string
	temperature float64
}

type ollamaRequest struct {
	Model    string              `json:"model"`
	Messages []assistant.Message `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message assistant.Message `json:"message"`
	Error   string            `json:"error"`
}

// NewOllama creates an Ollama completer for the server at baseURL
func NewOllama(c *client.Client, baseURL, model string, temperature float64) *Ollama {
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{http: c, baseURL: strings.TrimRight(baseURL, "/"), model: model, temperature: temperature}
}

func (o *Ollama) Name() string  { return ProviderOllama }
func (o *Ollama) Model() string { return o.model }

// Complete requests a single non-streamed reply
func (o *Ollama) Complete(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error) {
	req := ollamaRequest{Model: o.model, Messages: messages}
	req.Options.Temperature = o.temperature
	req.Options.NumPredict = maxTokens

	var out ollamaResponse
	resp, err := o.http.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post(o.baseURL + "/api/chat")
	})
	if err != nil {
		return "", providerError(ProviderOllama, err)
	}
	if err := api.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: ollama: decode: %v", ErrProvider, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", ErrProvider, out.Error)
	}
	if out.Message.Content == "" {
		return "", ErrEmptyReply
	}
	return out.Message.Content, nil
}
