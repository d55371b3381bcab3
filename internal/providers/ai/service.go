package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

// Service exposes the assistant as registry tools "ai.<action>"
type Service struct {
	assistant assistant.Service
}

// NewService wraps an assistant
func NewService(a assistant.Service) *Service {
	return &Service{assistant: a}
}

// Definition returns service metadata
func (s *Service) Definition() types.Service {
	codeParams := []types.Parameter{
		{Name: "code", Type: "string", Description: "Source code", Required: true},
		{Name: "language", Type: "string", Description: "Language of the code", Required: false},
	}
	return types.Service{
		ID:           "ai",
		Name:         "AI Assistant",
		Description:  "Code completion, explanation, optimization, debugging and chat",
		Category:     types.CategoryAI,
		Capabilities: []string{"code_complete", "explain", "optimize", "debug", "chat"},
		Tools: []types.Tool{
			{ID: "ai.code_complete", Name: "Complete Code", Description: "Suggest three completions", Parameters: codeParams, Returns: "object"},
			{ID: "ai.explain", Name: "Explain Code", Description: "Explain what code does", Parameters: codeParams, Returns: "object"},
			{ID: "ai.optimize", Name: "Optimize Code", Description: "Rewrite code and list the changes", Parameters: codeParams, Returns: "object"},
			{ID: "ai.debug", Name: "Debug Code", Description: "Report likely problems", Parameters: codeParams, Returns: "object"},
			{
				ID:          "ai.chat",
				Name:        "Chat",
				Description: "Answer a message with optional code context",
				Parameters: []types.Parameter{
					{Name: "message", Type: "string", Description: "User message", Required: true},
					{Name: "context", Type: "string", Description: "Code being discussed", Required: false},
					{Name: "history", Type: "array", Description: "Prior messages", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs an assistant action
func (s *Service) Execute(ctx context.Context, toolID string, params map[string]interface{}, _ *types.Context) (*types.Result, error) {
	action, err := assistant.ParseAction(strings.TrimPrefix(toolID, "ai."))
	if err != nil {
		return types.Failure(err.Error()), nil
	}

	payload := PayloadFromParams(params)
	if action == assistant.ActionChat && payload.Message == "" {
		return types.Failure("message required"), nil
	}

	r, err := s.assistant.Request(ctx, action, payload)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	data, err := resultMap(r)
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	return types.Success(data), nil
}

// PayloadFromParams reads a payload out of loosely typed JSON params
func PayloadFromParams(params map[string]interface{}) assistant.Payload {
	var p assistant.Payload
	p.Code, _ = types.GetString(params, "code")
	p.Language, _ = types.GetString(params, "language")
	p.Message, _ = types.GetString(params, "message")
	p.Context, _ = types.GetString(params, "context")

	if raw, ok := params["history"].([]interface{}); ok {
		for _, item := range raw {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			role, _ := types.GetString(m, "role")
			content, _ := types.GetString(m, "content")
			p.History = append(p.History, assistant.Message{Role: assistant.Role(role), Content: content})
		}
	}
	return p
}

func resultMap(r assistant.Result) (map[string]interface{}, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	out := map[string]interface{}{}
	if err := api.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}
