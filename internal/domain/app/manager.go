package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/filesystem"
)

// Events pushed to the UI
const (
	EventFileChanged = "file_changed"
	EventAutoSaved   = "autosaved"
)

// Watcher tracks the backing files of open tabs
type Watcher interface {
	Add(path string) error
	Remove(path string)
}

// Notifier pushes events to connected clients
type Notifier interface {
	Broadcast(eventType string, data interface{}) int
}

// Metrics records auto-save outcomes
type Metrics interface {
	IncAutoSaves(ok bool)
}

// Opened describes a freshly opened document tab
type Opened struct {
	Tab      workspace.Tab `json:"tab"`
	Restored int           `json:"restoredAnnotations"`
}

// Manager orchestrates the document tab lifecycle: opening files into
// tabs, persisting them, auto-saving and watching them on disk
type Manager struct {
	mu       sync.Mutex // serialises saves
	studio   *studio.Controller
	files    *filesystem.Store
	watcher  Watcher
	notifier Notifier
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a document manager
func NewManager(st *studio.Controller, files *filesystem.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{studio: st, files: files, logger: logger, now: time.Now}
}

// WithWatcher watches the files of opened tabs
func (m *Manager) WithWatcher(w Watcher) *Manager {
	m.watcher = w
	return m
}

// WithNotifier pushes autosaved and file_changed events
func (m *Manager) WithNotifier(n Notifier) *Manager {
	m.notifier = n
	return m
}

// WithMetrics adds auto-save metrics
func (m *Manager) WithMetrics(metrics Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Open opens the document at path in a new tab. Annotations saved next to
// the document are restored and the tab starts unmodified.
func (m *Manager) Open(path string) (Opened, error) {
	file, err := m.files.OpenDocument(path)
	if err != nil {
		return Opened{}, err
	}
	tab, err := m.studio.OpenDocument(file)
	if err != nil {
		return Opened{}, err
	}

	restored := 0
	if serialized, err := m.files.ReadFile(filesystem.AnnotationsPath(file.Path)); err == nil {
		n, err := m.studio.ImportAnnotations(tab.ID, serialized)
		if err != nil {
			m.logger.Warn("Failed to restore annotations", zap.String("path", file.Path), zap.Error(err))
		} else if n > 0 {
			restored = n
			if err := m.studio.MarkSaved(tab.ID, ""); err != nil {
				return Opened{}, err
			}
		}
	}

	if m.watcher != nil {
		if err := m.watcher.Add(file.Path); err != nil {
			m.logger.Warn("Failed to watch document", zap.String("path", file.Path), zap.Error(err))
		}
	}

	tab, _ = m.studio.Workspace().Tab(tab.ID)
	return Opened{Tab: tab, Restored: restored}, nil
}

// Close closes a tab and stops watching its file
func (m *Manager) Close(tabID string) error {
	tab, ok := m.studio.Workspace().Tab(tabID)
	if err := m.studio.CloseTab(tabID); err != nil {
		return err
	}
	if ok {
		m.unwatch(tab)
	}
	return nil
}

// CloseAll closes every tab
func (m *Manager) CloseAll() {
	tabs := m.studio.Workspace().Tabs()
	m.studio.CloseAll()
	for _, t := range tabs {
		m.unwatch(t)
	}
}

// Rewatch moves the watcher from the files of previous tabs to the files
// of the tabs open now. Used after a workspace snapshot is restored.
func (m *Manager) Rewatch(previous []workspace.Tab) {
	if m.watcher == nil {
		return
	}
	for _, t := range previous {
		m.unwatch(t)
	}
	for _, t := range m.studio.Workspace().Tabs() {
		if t.Kind != workspace.KindFile || t.FilePath == "" {
			continue
		}
		if err := m.watcher.Add(t.FilePath); err != nil {
			m.logger.Warn("Failed to watch document", zap.String("path", t.FilePath), zap.Error(err))
		}
	}
}

func (m *Manager) unwatch(t workspace.Tab) {
	if m.watcher != nil && t.FilePath != "" {
		m.watcher.Remove(t.FilePath)
	}
}

// Save persists a tab and clears its modified flag unless the tab was
// edited while the save ran. With data the
// document itself is overwritten; otherwise code tabs write their code and
// document tabs write their annotations to the sidecar file. An empty path
// means the tab's own path.
func (m *Manager) Save(tabID, path string, data []byte) (filesystem.SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, ok := m.studio.Workspace().Tab(tabID)
	if !ok {
		return filesystem.SaveResult{}, fmt.Errorf("%w: %s", workspace.ErrTabNotFound, tabID)
	}
	if path == "" {
		path = tab.FilePath
	}
	path, err := m.files.Resolve(path)
	if err != nil {
		return filesystem.SaveResult{}, err
	}

	rev := m.studio.Revision(tabID)
	res, err := m.persist(tab, path, data)
	if err != nil {
		return filesystem.SaveResult{}, err
	}
	if err := m.studio.MarkSavedAt(tabID, path, rev); err != nil {
		return filesystem.SaveResult{}, err
	}

	m.logger.Info("Tab saved", zap.String("tab_id", tabID), zap.String("path", res.Path))
	return res, nil
}

func (m *Manager) persist(tab workspace.Tab, path string, data []byte) (filesystem.SaveResult, error) {
	switch {
	case len(data) > 0:
		return m.files.SaveDocument(path, data)
	case tab.Kind == workspace.KindCode:
		code := ""
		if tab.Content != nil {
			code = tab.Content.Code
		}
		return m.files.WriteFile(path, code)
	}

	serialized, err := m.studio.ExportAnnotations(tab.ID)
	if err != nil {
		return filesystem.SaveResult{}, err
	}
	return m.files.AutoSave(filesystem.AnnotationsPath(path), []byte(serialized))
}

// AutoSave saves every modified tab that has a backing file and returns
// how many were written. Nothing runs while auto-save is disabled.
func (m *Manager) AutoSave(ctx context.Context) int {
	ws := m.studio.Workspace()
	if !ws.AutoSavePolicy().Enabled {
		return 0
	}

	saved := 0
	for _, t := range m.studio.AutoSaveTargets() {
		if ctx.Err() != nil {
			break
		}
		res, err := m.Save(t.ID, "", nil)
		if m.metrics != nil {
			m.metrics.IncAutoSaves(err == nil)
		}
		if err != nil {
			if !errors.Is(err, workspace.ErrTabNotFound) {
				m.logger.Warn("Auto-save failed", zap.String("tab_id", t.ID), zap.Error(err))
			}
			continue
		}
		saved++
		m.notify(EventAutoSaved, map[string]interface{}{
			"tabId": t.ID,
			"path":  res.Path,
		})
	}

	ws.MarkAutoSaved(m.now())
	return saved
}

// RunAutoSave runs AutoSave on the workspace interval until ctx is
// cancelled. Interval changes take effect after the next tick.
func (m *Manager) RunAutoSave(ctx context.Context) {
	interval := m.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.AutoSave(ctx); n > 0 {
				m.logger.Debug("Auto-saved tabs", zap.Int("count", n))
			}
			if next := m.interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (m *Manager) interval() time.Duration {
	if d := m.studio.Workspace().AutoSavePolicy().Interval; d > 0 {
		return d
	}
	return workspace.DefaultAutoSaveInterval
}

// ForwardChanges relays file changes as file_changed events, naming the
// tabs backed by each file, until changes is closed or ctx is cancelled
func (m *Manager) ForwardChanges(ctx context.Context, changes <-chan filesystem.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			tabIDs := []string{}
			for _, t := range m.studio.Workspace().Tabs() {
				if t.FilePath == ch.Path {
					tabIDs = append(tabIDs, t.ID)
				}
			}
			m.notify(EventFileChanged, map[string]interface{}{
				"path":   ch.Path,
				"change": ch.Type,
				"tabIds": tabIDs,
			})
		}
	}
}

func (m *Manager) notify(eventType string, data interface{}) {
	if m.notifier != nil {
		m.notifier.Broadcast(eventType, data)
	}
}
