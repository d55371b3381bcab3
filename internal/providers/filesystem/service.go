package filesystem

import (
	"context"

	"github.com/GriffinCanCode/DocStudio/backend/internal/types"
)

// Service exposes the store as registry tools "files.<op>"
type Service struct {
	store *Store
}

// NewService wraps a store
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Definition returns service metadata
func (s *Service) Definition() types.Service {
	pathParam := types.Parameter{Name: "path", Type: "string", Description: "File path", Required: true}
	return types.Service{
		ID:           "files",
		Name:         "Document Files",
		Description:  "Open, save and browse documents on disk",
		Category:     types.CategoryDocuments,
		Capabilities: []string{"open", "read", "write", "list", "thumbnail"},
		Tools: []types.Tool{
			{ID: "files.stat", Name: "Document Info", Description: "Name, type and size of a document", Parameters: []types.Parameter{pathParam}, Returns: "object"},
			{ID: "files.read", Name: "Read File", Description: "Read a text file", Parameters: []types.Parameter{pathParam}, Returns: "string"},
			{
				ID:          "files.write",
				Name:        "Write File",
				Description: "Write a text file atomically",
				Parameters: []types.Parameter{
					pathParam,
					{Name: "content", Type: "string", Description: "Text to write", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "files.list",
				Name:        "List Documents",
				Description: "Find supported documents under a folder",
				Parameters: []types.Parameter{
					{Name: "dir", Type: "string", Description: "Folder, defaults to the documents root", Required: false},
					{Name: "pattern", Type: "string", Description: "Glob such as **/*.pdf", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "files.thumbnail",
				Name:        "Thumbnail",
				Description: "Render a preview image",
				Parameters: []types.Parameter{
					pathParam,
					{Name: "out", Type: "string", Description: "Output image path", Required: true},
					{Name: "size", Type: "number", Description: "Edge in pixels", Required: false},
				},
				Returns: "string",
			},
			{
				ID:          "files.format_size",
				Name:        "Format Size",
				Description: "Human readable byte count",
				Parameters:  []types.Parameter{{Name: "bytes", Type: "number", Description: "Byte count", Required: true}},
				Returns:     "string",
			},
			{
				ID:          "files.validate_url",
				Name:        "Validate URL",
				Description: "Check that a URL is http or https",
				Parameters:  []types.Parameter{{Name: "url", Type: "string", Description: "URL", Required: true}},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a files tool
func (s *Service) Execute(_ context.Context, toolID string, params map[string]interface{}, _ *types.Context) (*types.Result, error) {
	switch toolID {
	case "files.stat":
		path, _ := types.GetString(params, "path")
		f, err := s.store.OpenDocument(path)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		return types.Success(map[string]interface{}{
			"name":      f.Name,
			"path":      f.Path,
			"extension": f.Extension,
			"mimeType":  f.MimeType,
			"size":      f.Size,
			"sizeLabel": FormatFileSize(f.Size),
		}), nil

	case "files.read":
		path, _ := types.GetString(params, "path")
		content, err := s.store.ReadFile(path)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		return types.Success(map[string]interface{}{"content": content}), nil

	case "files.write":
		path, _ := types.GetString(params, "path")
		content, ok := types.GetString(params, "content")
		if !ok {
			return types.Failure("content required"), nil
		}
		res, err := s.store.WriteFile(path, content)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		return types.Success(map[string]interface{}{"path": res.Path, "timestamp": res.Timestamp}), nil

	case "files.list":
		dir, _ := types.GetString(params, "dir")
		pattern, _ := types.GetString(params, "pattern")
		entries, err := s.store.ListDocuments(dir, pattern)
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		return types.Success(map[string]interface{}{"documents": entries, "count": len(entries)}), nil

	case "files.thumbnail":
		path, _ := types.GetString(params, "path")
		out, _ := types.GetString(params, "out")
		size, _ := types.GetNumber(params, "size")
		written, err := s.store.Thumbnail(path, out, int(size))
		if err != nil {
			return types.Failure(err.Error()), nil
		}
		return types.Success(map[string]interface{}{"path": written}), nil

	case "files.format_size":
		n, ok := types.GetNumber(params, "bytes")
		if !ok {
			return types.Failure("bytes required"), nil
		}
		return types.Success(map[string]interface{}{"formatted": FormatFileSize(int64(n))}), nil

	case "files.validate_url":
		u, _ := types.GetString(params, "url")
		return types.Success(map[string]interface{}{"valid": IsValidURL(u)}), nil
	}
	return types.Failure("unknown tool: " + toolID), nil
}
