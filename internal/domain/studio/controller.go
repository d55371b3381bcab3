package studio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/gesture"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
)

var (
	ErrNoEditor     = errors.New("tab has no annotation editor")
	ErrUnknownPhase = errors.New("unknown pointer phase")
)

// Phase is a pointer event stage
type Phase string

const (
	PhaseDown   Phase = "down"
	PhaseMove   Phase = "move"
	PhaseUp     Phase = "up"
	PhaseCancel Phase = "cancel"
)

// Observer records controller activity
type Observer interface {
	IncAnnotations(kind string)
	IncCommands(name string, ok bool)
}

// File is a loaded document handed to OpenDocument
type File struct {
	editor.Document
	Data []byte
}

// Controller wires the workspace to one editor per file tab
type Controller struct {
	mu        sync.RWMutex
	workspace *workspace.Session
	editors   map[string]*editor.Session     // Protected by mu
	gestures  map[string]*gesture.Dispatcher // Protected by mu
	defaults  editor.ToolConfig
	codec     *annotation.Codec
	logger    *zap.Logger
	observer  Observer
	commands  map[string]Command
}

// NewController creates a controller over ws. Editors for new file tabs
// start with defaults.
func NewController(ws *workspace.Session, defaults editor.ToolConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		workspace: ws,
		editors:   make(map[string]*editor.Session),
		gestures:  make(map[string]*gesture.Dispatcher),
		defaults:  defaults,
		codec:     annotation.NewCodec(logger),
		logger:    logger,
	}
	c.commands = c.builtinCommands()
	return c
}

// WithObserver adds metrics tracking to the controller
func (c *Controller) WithObserver(o Observer) *Controller {
	c.observer = o
	return c
}

// Workspace exposes the tab session
func (c *Controller) Workspace() *workspace.Session {
	return c.workspace
}

// SetDefaults changes the tool config used for editors opened from now on
func (c *Controller) SetDefaults(cfg editor.ToolConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults = cfg
}

// OpenDocument opens a file tab for f and loads it into a fresh editor
func (c *Controller) OpenDocument(f File) (workspace.Tab, error) {
	tab, err := c.workspace.OpenTab(workspace.Descriptor{
		Title: f.Name,
		Kind:  workspace.KindFile,
		Content: &workspace.Content{
			Name:      f.Name,
			Extension: f.Extension,
			MimeType:  f.MimeType,
			Size:      f.Size,
			Data:      f.Data,
		},
		FilePath: f.Path,
	})
	if err != nil {
		return workspace.Tab{}, err
	}

	c.mu.Lock()
	s := editor.NewSession(c.defaults)
	s.LoadDocument(f.Document)
	c.editors[tab.ID] = s
	c.gestures[tab.ID] = gesture.NewDispatcher(s)
	c.mu.Unlock()

	c.logger.Info("Document opened",
		zap.String("tab_id", tab.ID),
		zap.String("name", f.Name),
		zap.Int64("size", f.Size))
	return tab, nil
}

// OpenWeb opens a web tab. An empty title falls back to the URL.
func (c *Controller) OpenWeb(url, title string) (workspace.Tab, error) {
	if title == "" {
		title = url
	}
	return c.workspace.OpenTab(workspace.Descriptor{Title: title, Kind: workspace.KindWeb, URL: url})
}

// NewCodeTab opens a code tab holding code
func (c *Controller) NewCodeTab(title, code, language string) (workspace.Tab, error) {
	if language == "" {
		language = workspace.DefaultEditorLanguage
	}
	return c.workspace.OpenTab(workspace.Descriptor{
		Title:   title,
		Kind:    workspace.KindCode,
		Content: &workspace.Content{Code: code, Language: language},
	})
}

// CloseTab closes a tab and drops its editor
func (c *Controller) CloseTab(tabID string) error {
	if err := c.workspace.CloseTab(tabID); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.editors, tabID)
	delete(c.gestures, tabID)
	c.mu.Unlock()
	return nil
}

// CloseAll closes every tab
func (c *Controller) CloseAll() {
	c.workspace.CloseAll()

	c.mu.Lock()
	c.editors = make(map[string]*editor.Session)
	c.gestures = make(map[string]*gesture.Dispatcher)
	c.mu.Unlock()
}

// Editor returns the editor of a file tab
func (c *Controller) Editor(tabID string) (*editor.Session, error) {
	if _, ok := c.workspace.Tab(tabID); !ok {
		return nil, fmt.Errorf("%w: %s", workspace.ErrTabNotFound, tabID)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.editors[tabID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEditor, tabID)
	}
	return s, nil
}

// ActiveEditor returns the editor of the active tab
func (c *Controller) ActiveEditor() (*editor.Session, error) {
	id := c.workspace.ActiveTabID()
	if id == "" {
		return nil, fmt.Errorf("%w: no active tab", workspace.ErrTabNotFound)
	}
	return c.Editor(id)
}

// Annotate adds an annotation to a tab's document
func (c *Controller) Annotate(tabID string, kind annotation.Kind, p editor.Params) (annotation.Annotation, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return nil, err
	}
	a, err := s.AddAnnotation(kind, p)
	if err != nil {
		return nil, err
	}
	c.recordAnnotation(a)
	return a, c.syncModified(tabID, s)
}

// RemoveAnnotation deletes an annotation as an undoable step
func (c *Controller) RemoveAnnotation(tabID, annotationID string) error {
	s, err := c.Editor(tabID)
	if err != nil {
		return err
	}
	if err := s.RemoveAnnotation(annotationID); err != nil {
		return err
	}
	return c.syncModified(tabID, s)
}

// ImportAnnotations replaces a tab's annotations with a serialized set.
// Malformed input imports nothing and leaves the tab untouched.
func (c *Controller) ImportAnnotations(tabID, serialized string) (int, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return 0, err
	}
	set := c.codec.ImportAll(serialized)
	if len(set) == 0 {
		return 0, nil
	}
	if err := s.ReplaceAnnotations(set); err != nil {
		return 0, err
	}
	return len(set), c.syncModified(tabID, s)
}

// MergeAnnotations adds a serialized set to a tab's annotations as one
// undoable step. Malformed input merges nothing.
func (c *Controller) MergeAnnotations(tabID, serialized string) (int, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return 0, err
	}
	set := c.codec.ImportAll(serialized)
	if len(set) == 0 {
		return 0, nil
	}
	if err := s.MergeAnnotations(set); err != nil {
		return 0, err
	}
	return len(set), c.syncModified(tabID, s)
}

// ExportAnnotations serializes a tab's current annotations
func (c *Controller) ExportAnnotations(tabID string) (string, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return "", err
	}
	return c.codec.ExportAll(s.Annotations())
}

// Undo steps a tab's history back
func (c *Controller) Undo(tabID string) (bool, error) {
	return c.step(tabID, (*editor.Session).Undo)
}

// Redo steps a tab's history forward
func (c *Controller) Redo(tabID string) (bool, error) {
	return c.step(tabID, (*editor.Session).Redo)
}

func (c *Controller) step(tabID string, fn func(*editor.Session) bool) (bool, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return false, err
	}
	if !fn(s) {
		return false, nil
	}
	return true, c.syncModified(tabID, s)
}

// Pointer feeds one pointer event to a tab's gesture dispatcher. It returns
// the provisional annotation while a gesture runs and the committed one on up.
func (c *Controller) Pointer(tabID string, phase Phase, ev gesture.Event) (annotation.Annotation, error) {
	s, err := c.Editor(tabID)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	d, ok := c.gestures[tabID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", workspace.ErrTabNotFound, tabID)
	}

	switch phase {
	case PhaseDown:
		return d.Down(ev)
	case PhaseMove:
		return d.Move(ev)
	case PhaseCancel:
		d.Cancel()
		return nil, nil
	case PhaseUp:
		a, err := d.Up(ev)
		if err != nil || a == nil {
			return a, err
		}
		c.recordAnnotation(a)
		c.logger.Debug("Gesture committed",
			zap.String("tab_id", tabID),
			zap.String("annotation_id", annotation.IDOf(a)))
		return a, c.syncModified(tabID, s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
}

// MarkSaved records a successful save of a tab to path
func (c *Controller) MarkSaved(tabID, path string) error {
	return c.MarkSavedAt(tabID, path, c.Revision(tabID))
}

// Revision returns the annotation revision of a tab's editor, or 0 for
// tabs without one. Read it before exporting and pass it to MarkSavedAt.
func (c *Controller) Revision(tabID string) uint64 {
	c.mu.RLock()
	s, ok := c.editors[tabID]
	c.mu.RUnlock()
	if !ok {
		return 0
	}
	return s.Revision()
}

// MarkSavedAt records a save of a tab to path that captured revision rev.
// Edits made after rev keep the tab modified.
func (c *Controller) MarkSavedAt(tabID, path string, rev uint64) error {
	c.mu.RLock()
	s, ok := c.editors[tabID]
	c.mu.RUnlock()

	modified := false
	if ok {
		s.MarkSavedAt(rev)
		modified = s.Modified()
	}
	patch := workspace.Patch{Modified: &modified}
	if path != "" {
		patch.FilePath = &path
	}
	_, err := c.workspace.UpdateTab(tabID, patch)
	return err
}

// AutoSaveTargets lists modified tabs that have a backing file. A tab
// counts as modified while either it or its editor says so.
func (c *Controller) AutoSaveTargets() []workspace.Tab {
	var out []workspace.Tab
	for _, t := range c.workspace.Tabs() {
		if t.FilePath == "" {
			continue
		}
		if t.Modified || c.editorModified(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) editorModified(tabID string) bool {
	c.mu.RLock()
	s, ok := c.editors[tabID]
	c.mu.RUnlock()
	return ok && s.Modified()
}

func (c *Controller) syncModified(tabID string, s *editor.Session) error {
	modified := s.Modified()
	_, err := c.workspace.UpdateTab(tabID, workspace.Patch{Modified: &modified})
	return err
}

func (c *Controller) recordAnnotation(a annotation.Annotation) {
	if c.observer != nil {
		c.observer.IncAnnotations(string(a.Kind()))
	}
}
