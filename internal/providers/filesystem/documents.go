package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNoPath      = errors.New("no file path")
	ErrIsDirectory = errors.New("path is a directory")
)

// mimeTypes lists every extension a tab can open
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"hwp":  "application/x-hwp",
	"json": "application/json",
	"css":  "text/css",
	"js":   "text/javascript",
	"xml":  "application/xml",
}

const fallbackMimeType = "application/octet-stream"

// Extension returns the lower-case extension of path without the dot
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Supported reports whether a tab can open the file at path
func Supported(path string) bool {
	_, ok := mimeTypes[Extension(path)]
	return ok
}

// SupportedExtensions lists the openable extensions in sorted order
func SupportedExtensions() []string {
	out := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// MimeType returns the mime type for path's extension, sniffing data when
// the extension is unknown
func MimeType(path string, data []byte) string {
	if m, ok := mimeTypes[Extension(path)]; ok {
		return m
	}
	if len(data) > 0 {
		return mimetype.Detect(data).String()
	}
	return fallbackMimeType
}

// Store reads and writes documents under a root directory
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a store. Relative paths resolve under root.
func NewStore(root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Store{root: filepath.Clean(root), logger: logger}
}

// Root returns the documents root
func (s *Store) Root() string {
	return s.root
}

// AnnotationsSuffix names the sidecar file holding a document's annotations
const AnnotationsSuffix = ".annotations.json"

// AnnotationsPath returns the sidecar path for a document
func AnnotationsPath(documentPath string) string {
	return documentPath + AnnotationsSuffix
}

// Resolve cleans path and anchors relative paths at the root
func (s *Store) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrNoPath
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(s.root, filepath.Clean(path)), nil
}

// OpenDocument reads a supported document into a tab-ready file
func (s *Store) OpenDocument(path string) (studio.File, error) {
	full, err := s.Resolve(path)
	if err != nil {
		return studio.File{}, err
	}
	if !Supported(full) {
		return studio.File{}, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(full))
	}

	info, err := os.Stat(full)
	if err != nil {
		return studio.File{}, fmt.Errorf("open %s: %w", full, err)
	}
	if info.IsDir() {
		return studio.File{}, fmt.Errorf("%w: %s", ErrIsDirectory, full)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return studio.File{}, fmt.Errorf("read %s: %w", full, err)
	}

	s.logger.Debug("Document opened", zap.String("path", full), zap.Int64("size", info.Size()))
	return studio.File{
		Document: editor.Document{
			Name:      filepath.Base(full),
			Path:      full,
			Extension: Extension(full),
			MimeType:  MimeType(full, data),
			Size:      info.Size(),
		},
		Data: data,
	}, nil
}
