package web

import (
	"context"

	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

// Service exposes page metadata as registry tools
type Service struct {
	fetcher *Fetcher
}

// NewService wraps a fetcher
func NewService(f *Fetcher) *Service {
	return &Service{fetcher: f}
}

// Definition returns service metadata
func (s *Service) Definition() types.Service {
	return types.Service{
		ID:           "web",
		Name:         "Web Pages",
		Description:  "Title, description and favicon of web pages opened in tabs",
		Category:     types.CategoryWeb,
		Capabilities: []string{"fetch", "metadata"},
		Tools: []types.Tool{
			{
				ID:          "web.fetch",
				Name:        "Fetch Page",
				Description: "Download a page and extract its metadata",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "http or https URL", Required: true},
				},
				Returns: "PageInfo",
			},
			{
				ID:          "web.metadata",
				Name:        "Parse Page",
				Description: "Extract metadata from HTML already in hand",
				Parameters: []types.Parameter{
					{Name: "html", Type: "string", Description: "HTML content", Required: true},
					{Name: "url", Type: "string", Description: "URL the HTML came from", Required: false},
				},
				Returns: "PageInfo",
			},
		},
	}
}

// Execute runs a web tool
func (s *Service) Execute(ctx context.Context, toolID string, params map[string]interface{}, _ *types.Context) (*types.Result, error) {
	var (
		info PageInfo
		err  error
	)
	switch toolID {
	case "web.fetch":
		u, _ := types.GetString(params, "url")
		info, err = s.fetcher.Fetch(ctx, u)
	case "web.metadata":
		doc, _ := types.GetString(params, "html")
		u, _ := types.GetString(params, "url")
		info, err = Parse(u, []byte(doc), "")
	default:
		return types.Failure("unknown tool: " + toolID), nil
	}
	if err != nil {
		return types.Failure(err.Error()), nil
	}
	return types.Success(map[string]interface{}{
		"url":         info.URL,
		"title":       info.Title,
		"description": info.Description,
		"favicon":     info.Favicon,
		"excerpt":     info.Excerpt,
		"charset":     info.Charset,
	}), nil
}
