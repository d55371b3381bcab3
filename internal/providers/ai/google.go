package ai

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

const googleBaseURL = "https://generativelanguage.googleapis.com"

// Google calls the Gemini generateContent endpoint
type Google struct {
	http        *client.Client
	baseURL     string
	key         string
	model       string
	temperature float64
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGoogle creates a Gemini completer
func NewGoogle(c *client.Client, baseURL, key, model string, temperature float64) *Google {
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	if model == "" {
		model = DefaultGoogleModel
	}
	return &Google{http: c, baseURL: baseURL, key: key, model: model, temperature: temperature}
}

func (g *Google) Name() string  { return ProviderGoogle }
func (g *Google) Model() string { return g.model }

// Complete maps the assistant role to "model" and the system message to a
// system instruction
func (g *Google) Complete(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error) {
	system, rest := splitSystem(messages)

	req := geminiRequest{Contents: make([]geminiContent, 0, len(rest))}
	for _, m := range rest {
		role := "user"
		if m.Role == assistant.RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	req.GenerationConfig.MaxOutputTokens = maxTokens
	req.GenerationConfig.Temperature = g.temperature

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))

	var out geminiResponse
	resp, err := g.http.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("key", g.key).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post(endpoint)
	})
	if err != nil {
		return "", providerError(ProviderGoogle, err)
	}
	if err := api.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: google: decode: %v", ErrProvider, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
