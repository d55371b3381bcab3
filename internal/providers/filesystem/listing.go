package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Entry is one document found while browsing a folder
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Extension string    `json:"extension"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	SizeLabel string    `json:"sizeLabel"`
	Modified  time.Time `json:"modified"`
}

// ListDocuments walks dir and returns supported documents whose path
// relative to dir matches pattern. An empty pattern matches everything.
// Hidden files, directories and annotation sidecars are skipped.
func (s *Store) ListDocuments(dir, pattern string) ([]Entry, error) {
	root, err := s.Resolve(dir)
	if err != nil {
		root = s.root
	}
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var (
		mu      sync.Mutex
		entries = []Entry{}
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Supported(path) || strings.HasSuffix(path, AnnotationsSuffix) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		entry := Entry{
			Name:      d.Name(),
			Path:      path,
			Extension: Extension(path),
			MimeType:  MimeType(path, nil),
			Size:      info.Size(),
			SizeLabel: FormatFileSize(info.Size()),
			Modified:  info.ModTime(),
		}
		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}
