package workspace

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

var (
	ErrTabNotFound  = errors.New("tab not found")
	ErrInvalidKind  = errors.New("invalid tab kind")
	ErrUnknownPanel = errors.New("unknown panel")
	ErrInvalidValue = errors.New("invalid workspace value")
)

// Defaults for a fresh workspace
const (
	DefaultLeftPanelWidth   = 250
	DefaultRightPanelWidth  = 300
	DefaultEditorLanguage   = "html"
	DefaultAutoSaveInterval = time.Minute
)

// Observer is notified about tab counts
type Observer interface {
	SetTabsOpen(count int)
	IncTabsOpened(kind string)
}

// Session multiplexes open tabs and tracks the active one
type Session struct {
	mu       sync.RWMutex
	tabs     []*Tab
	activeID string
	nextID   uint64
	panels   Panels
	layout   Layout
	editor   CodeBuffer
	external string
	autoSave AutoSave
	observer Observer
	now      func() time.Time
}

// NewSession creates an empty workspace with default layout
func NewSession() *Session {
	return &Session{
		panels: Panels{ShowSidebar: true},
		layout: Layout{
			LeftPanelWidth:  DefaultLeftPanelWidth,
			RightPanelWidth: DefaultRightPanelWidth,
		},
		editor:   CodeBuffer{Language: DefaultEditorLanguage},
		autoSave: AutoSave{Enabled: true, Interval: DefaultAutoSaveInterval},
		now:      time.Now,
	}
}

// WithObserver attaches tab metrics
func (s *Session) WithObserver(o Observer) *Session {
	s.observer = o
	return s
}

// OpenTab appends a tab, makes it active and returns a copy of it
func (s *Session) OpenTab(desc Descriptor) (Tab, error) {
	kind := desc.Kind
	if kind == "" {
		kind = KindFile
	}
	if !kind.Valid() {
		return Tab{}, fmt.Errorf("%w: %q", ErrInvalidKind, desc.Kind)
	}
	title := desc.Title
	if title == "" {
		title = DefaultTitle
	}

	s.mu.Lock()
	s.nextID++
	tab := &Tab{
		ID:       strconv.FormatUint(s.nextID, 10),
		Title:    title,
		Kind:     kind,
		Content:  desc.Content.clone(),
		FilePath: desc.FilePath,
		URL:      desc.URL,
		OpenedAt: s.now(),
	}
	s.tabs = append(s.tabs, tab)
	s.activeID = tab.ID
	count := len(s.tabs)
	out := tab.clone()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.IncTabsOpened(string(kind))
		s.observer.SetTabsOpen(count)
	}
	return out, nil
}

// CloseTab removes id. If it was active, the tab to its left (or the new
// first tab) becomes active; closing the last tab leaves none active.
func (s *Session) CloseTab(tabID string) error {
	s.mu.Lock()
	idx := s.indexOf(tabID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}

	s.tabs = append(s.tabs[:idx:idx], s.tabs[idx+1:]...)
	if s.activeID == tabID {
		s.activeID = ""
		if len(s.tabs) > 0 {
			s.activeID = s.tabs[max(0, idx-1)].ID
		}
	}
	count := len(s.tabs)
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.SetTabsOpen(count)
	}
	return nil
}

// CloseAll removes every tab
func (s *Session) CloseAll() {
	s.mu.Lock()
	s.tabs = nil
	s.activeID = ""
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.SetTabsOpen(0)
	}
}

// SetActive makes id the active tab
func (s *Session) SetActive(tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(tabID) < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	s.activeID = tabID
	return nil
}

// UpdateTab merges patch into id and returns the updated copy
func (s *Session) UpdateTab(tabID string, patch Patch) (Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(tabID)
	if idx < 0 {
		return Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}

	tab := s.tabs[idx]
	if patch.Title != nil {
		tab.Title = *patch.Title
	}
	if patch.Modified != nil {
		tab.Modified = *patch.Modified
	}
	if patch.Content != nil {
		tab.Content = patch.Content.clone()
	}
	if patch.FilePath != nil {
		tab.FilePath = *patch.FilePath
	}
	if patch.URL != nil {
		tab.URL = *patch.URL
	}
	return tab.clone(), nil
}

// NextTab activates the tab after the active one, wrapping around.
// No-op with fewer than two tabs.
func (s *Session) NextTab() {
	s.step(1)
}

// PrevTab activates the tab before the active one, wrapping around.
// No-op with fewer than two tabs.
func (s *Session) PrevTab() {
	s.step(-1)
}

func (s *Session) step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tabs)
	if n < 2 {
		return
	}
	idx := s.indexOf(s.activeID)
	if idx < 0 {
		idx = 0
	}
	s.activeID = s.tabs[((idx+delta)%n+n)%n].ID
}

// TogglePanel flips one panel flag and returns its new value
func (s *Session) TogglePanel(name Panel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag := s.panels.flag(name)
	if flag == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	*flag = !*flag
	return *flag, nil
}

// Tab returns a copy of id
func (s *Session) Tab(tabID string) (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(tabID)
	if idx < 0 {
		return Tab{}, false
	}
	return s.tabs[idx].clone(), true
}

// ActiveTab returns a copy of the active tab
func (s *Session) ActiveTab() (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return Tab{}, false
	}
	return s.tabs[idx].clone(), true
}

// ActiveTabID returns the active id, or "" with no tabs
func (s *Session) ActiveTabID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Tabs returns copies of all tabs in order
func (s *Session) Tabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = t.clone()
	}
	return out
}

// SetEditorCode replaces the code editor buffer
func (s *Session) SetEditorCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Code = code
}

// SetEditorLanguage sets the code editor language
func (s *Session) SetEditorLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Language = language
}

// SetExternalURL records the last external page opened
func (s *Session) SetExternalURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.external = url
}

// SetPanelWidths sets the side panel widths. Non-positive widths are rejected.
func (s *Session) SetPanelWidths(left, right int) error {
	if left <= 0 || right <= 0 {
		return fmt.Errorf("%w: panel widths %d/%d", ErrInvalidValue, left, right)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = Layout{LeftPanelWidth: left, RightPanelWidth: right}
	return nil
}

// SetAutoSave updates the auto-save policy
func (s *Session) SetAutoSave(enabled bool, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: auto-save interval %s", ErrInvalidValue, interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSave.Enabled = enabled
	s.autoSave.Interval = interval
	return nil
}

// MarkAutoSaved records the time of the last auto-save run
func (s *Session) MarkAutoSaved(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSave.Last = &at
}

// AutoSavePolicy returns the current auto-save settings
func (s *Session) AutoSavePolicy() AutoSave {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoSave
}

// State returns a copy of the whole workspace
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tabs := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		tabs[i] = t.clone()
	}
	auto := s.autoSave
	if auto.Last != nil {
		last := *auto.Last
		auto.Last = &last
	}
	return State{
		Tabs:        tabs,
		ActiveTabID: s.activeID,
		Panels:      s.panels,
		Layout:      s.layout,
		Editor:      s.editor,
		ExternalURL: s.external,
		AutoSave:    auto,
	}
}

// Stats returns workspace statistics
func (s *Session) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKind := make(map[string]int)
	modified := 0
	for _, t := range s.tabs {
		byKind[string(t.Kind)]++
		if t.Modified {
			modified++
		}
	}
	return map[string]interface{}{
		"total_tabs":    len(s.tabs),
		"modified_tabs": modified,
		"by_kind":       byKind,
		"active_tab":    s.activeID,
	}
}

func (s *Session) indexOf(tabID string) int {
	if tabID == "" {
		return -1
	}
	for i, t := range s.tabs {
		if t.ID == tabID {
			return i
		}
	}
	return -1
}
