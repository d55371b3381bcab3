package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// SaveResult reports a completed write
type SaveResult struct {
	OK        bool      `json:"success"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveDocument writes data atomically through a temp file and rename
func (s *Store) SaveDocument(path string, data []byte) (SaveResult, error) {
	full, err := s.Resolve(path)
	if err != nil {
		return SaveResult{}, err
	}
	if err := writeAtomic(full, data); err != nil {
		return SaveResult{}, err
	}
	s.logger.Debug("Document saved", zap.String("path", full), zap.Int("bytes", len(data)))
	return SaveResult{OK: true, Path: full, Timestamp: time.Now()}, nil
}

// AutoSave saves data to the tab's existing path. Tabs without a path are
// never auto-saved.
func (s *Store) AutoSave(path string, data []byte) (SaveResult, error) {
	if path == "" {
		return SaveResult{}, ErrNoPath
	}
	return s.SaveDocument(path, data)
}

// ReadFile reads a text file
func (s *Store) ReadFile(path string) (string, error) {
	full, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", full, err)
	}
	return string(data), nil
}

// WriteFile writes a text file
func (s *Store) WriteFile(path, content string) (SaveResult, error) {
	return s.SaveDocument(path, []byte(content))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
