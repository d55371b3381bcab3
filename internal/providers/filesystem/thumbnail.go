package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	thumbnails "github.com/drummonds/go-thumbnails"
)

// DefaultThumbnailSize is the thumbnail edge in pixels
const DefaultThumbnailSize = 600

// Thumbnail renders a preview of a PDF or image document to outPath
func (s *Store) Thumbnail(path, outPath string, size int) (string, error) {
	full, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if !Supported(full) {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(full))
	}
	out, err := s.Resolve(outPath)
	if err != nil {
		return "", err
	}
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(out), err)
	}
	if err := thumbnails.GenerateStyledAndSave(full, out, uint(size), thumbnails.StyleUniform); err != nil {
		return "", fmt.Errorf("thumbnail %s: %w", full, err)
	}
	return out, nil
}
