package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/shared/id"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrInvalidID = errors.New("invalid session id")
)

const fileExt = ".session"

var validID = regexp.MustCompile(`^sess_[0-9A-Za-z]{26}$`)

// Studio is the workspace a session captures and restores
type Studio interface {
	Capture() ([]studio.TabState, error)
	Restore(states []studio.TabState) error
	Workspace() *workspace.Session
}

// Snapshot is a saved workspace
type Snapshot struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Tabs        []studio.TabState    `json:"tabs"`
	Panels      workspace.Panels     `json:"panels"`
	Layout      workspace.Layout     `json:"layout"`
	Editor      workspace.CodeBuffer `json:"editor"`
}

// Metadata summarises a saved session for listings
type Metadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	TabCount    int       `json:"tab_count"`
	Size        int64     `json:"size"`
}

// Stats reports manager activity
type Stats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
	Directory     string     `json:"directory"`
}

// Manager stores compressed workspace snapshots on disk
type Manager struct {
	dir     string
	logger  *zap.Logger
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a manager writing to dir
func NewManager(dir string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	return &Manager{dir: dir, logger: logger, encoder: enc, decoder: dec}, nil
}

// Close releases the codec resources
func (m *Manager) Close() {
	m.encoder.Close()
	m.decoder.Close()
}

// Save captures s and writes it under a new id
func (m *Manager) Save(ctx context.Context, name, description string, s Studio) (*Snapshot, error) {
	tabs, err := s.Capture()
	if err != nil {
		return nil, fmt.Errorf("capture workspace: %w", err)
	}
	state := s.Workspace().State()

	now := time.Now()
	if strings.TrimSpace(name) == "" {
		name = "Session " + now.Format("2006-01-02 15:04")
	}
	snap := &Snapshot{
		ID:          id.NewSessionID().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		Tabs:        tabs,
		Panels:      state.Panels,
		Layout:      state.Layout,
		Editor:      state.Editor,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.write(snap); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	m.logger.Info("Session saved",
		zap.String("id", snap.ID),
		zap.String("name", snap.Name),
		zap.Int("tabs", len(snap.Tabs)))
	return snap, nil
}

// Load reads a snapshot
func (m *Manager) Load(_ context.Context, sessionID string) (*Snapshot, error) {
	path, err := m.path(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return m.decode(raw)
}

// Restore replaces the open workspace with a saved one
func (m *Manager) Restore(ctx context.Context, sessionID string, s Studio) error {
	snap, err := m.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.Restore(snap.Tabs); err != nil {
		return fmt.Errorf("restore tabs: %w", err)
	}

	ws := s.Workspace()
	ws.SetEditorCode(snap.Editor.Code)
	ws.SetEditorLanguage(snap.Editor.Language)
	if snap.Layout.LeftPanelWidth > 0 || snap.Layout.RightPanelWidth > 0 {
		if err := ws.SetPanelWidths(snap.Layout.LeftPanelWidth, snap.Layout.RightPanelWidth); err != nil {
			m.logger.Warn("Skipping saved panel widths", zap.Error(err))
		}
	}
	restorePanels(ws, snap.Panels)

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	m.logger.Info("Session restored", zap.String("id", snap.ID), zap.Int("tabs", len(snap.Tabs)))
	return nil
}

func restorePanels(ws *workspace.Session, want workspace.Panels) {
	have := ws.State().Panels
	toggles := []struct {
		name       workspace.Panel
		have, want bool
	}{
		{workspace.PanelCodeEditor, have.ShowCodeEditor, want.ShowCodeEditor},
		{workspace.PanelCopilot, have.ShowCopilot, want.ShowCopilot},
		{workspace.PanelSidebar, have.ShowSidebar, want.ShowSidebar},
	}
	for _, t := range toggles {
		if t.have != t.want {
			_, _ = ws.TogglePanel(t.name)
		}
	}
}

// List returns saved sessions, newest first. Unreadable files are skipped.
func (m *Manager) List() ([]Metadata, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := []Metadata{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		path := filepath.Join(m.dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		snap, err := m.decode(raw)
		if err != nil {
			m.logger.Warn("Skipping unreadable session", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, Metadata{
			ID:          snap.ID,
			Name:        snap.Name,
			Description: snap.Description,
			CreatedAt:   snap.CreatedAt,
			TabCount:    len(snap.Tabs),
			Size:        int64(len(raw)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a saved session
func (m *Manager) Delete(_ context.Context, sessionID string) error {
	path, err := m.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Info("Session deleted", zap.String("id", sessionID))
	return nil
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	total := 0
	if entries, err := os.ReadDir(m.dir); err == nil {
		for _, e := range entries {
			if filepath.Ext(e.Name()) == fileExt {
				total++
			}
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		TotalSessions: total,
		LastSaved:     m.lastSaved,
		LastRestored:  m.lastRestored,
		Directory:     m.dir,
	}
}

func (m *Manager) path(sessionID string) (string, error) {
	if !validID.MatchString(sessionID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, sessionID)
	}
	return filepath.Join(m.dir, sessionID+fileExt), nil
}

func (m *Manager) write(snap *Snapshot) error {
	path, err := m.path(snap.ID)
	if err != nil {
		return err
	}
	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	compressed := m.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (m *Manager) decode(raw []byte) (*Snapshot, error) {
	data, err := m.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &snap, nil
}
