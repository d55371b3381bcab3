package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
)

var (
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrDuplicateID        = errors.New("duplicate annotation id")
	ErrInvalidGeometry    = errors.New("invalid annotation geometry")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrInvalidToolConfig  = errors.New("invalid tool config")
	ErrIdentityChanged    = errors.New("update changed annotation identity")
)

// Document describes the file loaded into a session
type Document struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Extension string `json:"extension,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Size      int64  `json:"size"`
}

// Session owns one document's annotations and its linear undo history.
// Every edit appends a fresh snapshot; committed snapshots are never mutated.
type Session struct {
	mu          sync.RWMutex
	document    *Document
	annotations []annotation.Annotation
	history     [][]annotation.Annotation
	index       int
	modified    bool
	revision    uint64 // bumped by every change to annotations
	tools       ToolConfig
}

// NewSession creates an empty session with the given initial tool config
func NewSession(tools ToolConfig) *Session {
	return &Session{
		annotations: []annotation.Annotation{},
		index:       -1,
		tools:       tools,
	}
}

// LoadDocument replaces the document and discards all annotations and history
func (s *Session) LoadDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.document = &doc
	s.annotations = []annotation.Annotation{}
	s.history = nil
	s.index = -1
	s.modified = false
	s.revision++
}

// AddAnnotation builds an annotation of kind from p using the current tool
// config and commits it as a new snapshot
func (s *Session) AddAnnotation(kind annotation.Kind, p Params) (annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := Build(kind, p, s.tools, s.documentName())
	if err != nil {
		return nil, err
	}
	if err := s.commitLocked(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Commit appends an already constructed annotation as a new snapshot
func (s *Session) Commit(a annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked(a)
}

func (s *Session) commitLocked(a annotation.Annotation) error {
	if err := annotation.Validate(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if s.indexOf(a.Header().ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, a.Header().ID)
	}

	next := make([]annotation.Annotation, len(s.annotations), len(s.annotations)+1)
	copy(next, s.annotations)
	next = append(next, annotation.DeepCopy(a))
	s.push(next)
	return nil
}

// RemoveAnnotation deletes id through the snapshot path, so it can be undone
func (s *Session) RemoveAnnotation(annotationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(annotationID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrAnnotationNotFound, annotationID)
	}

	next := make([]annotation.Annotation, 0, len(s.annotations)-1)
	next = append(next, s.annotations[:i]...)
	next = append(next, s.annotations[i+1:]...)
	s.push(next)
	return nil
}

// UpdateAnnotation replaces id with fn applied to a copy of it.
// fn must keep the id and kind.
func (s *Session) UpdateAnnotation(annotationID string, fn func(annotation.Annotation) annotation.Annotation) (annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(annotationID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrAnnotationNotFound, annotationID)
	}

	current := s.annotations[i]
	updated := fn(annotation.DeepCopy(current))
	if updated == nil || updated.Kind() != current.Kind() || updated.Header().ID != annotationID {
		return nil, fmt.Errorf("%w: %s", ErrIdentityChanged, annotationID)
	}
	if err := annotation.Validate(updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	next := make([]annotation.Annotation, len(s.annotations))
	copy(next, s.annotations)
	next[i] = updated
	s.push(next)
	return annotation.DeepCopy(updated), nil
}

// ReplaceAnnotations swaps in set as a single new snapshot
func (s *Session) ReplaceAnnotations(set []annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(set)
}

// MergeAnnotations adds set to the current annotations as a single new
// snapshot, ordered by creation time. Ids already present are rejected.
func (s *Session) MergeAnnotations(set []annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(annotation.Merge(s.annotations, set))
}

func (s *Session) replaceLocked(set []annotation.Annotation) error {
	seen := make(map[string]struct{}, len(set))
	next := make([]annotation.Annotation, 0, len(set))
	for _, a := range set {
		if err := annotation.Validate(a); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		if _, dup := seen[a.Header().ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, a.Header().ID)
		}
		seen[a.Header().ID] = struct{}{}
		next = append(next, annotation.DeepCopy(a))
	}
	s.push(next)
	return nil
}

// Clear removes every annotation as one undoable step. No-op when empty.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.annotations) == 0 {
		return
	}
	s.push([]annotation.Annotation{})
}

// push truncates redo entries beyond the cursor and appends next
func (s *Session) push(next []annotation.Annotation) {
	s.history = append(s.history[:s.index+1:s.index+1], next)
	s.index++
	s.annotations = next
	s.modified = true
	s.revision++
}

// Undo steps back one snapshot. It reports whether the cursor moved.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index <= 0 {
		return false
	}
	s.index--
	s.annotations = s.history[s.index]
	s.modified = true
	s.revision++
	return true
}

// Redo steps forward one snapshot. It reports whether the cursor moved.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.history)-1 {
		return false
	}
	s.index++
	s.annotations = s.history[s.index]
	s.modified = true
	s.revision++
	return true
}

// CanUndo reports whether Undo would move the cursor
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index > 0
}

// CanRedo reports whether Redo would move the cursor
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index < len(s.history)-1
}

// SetToolConfig merges patch into the tool config
func (s *Session) SetToolConfig(patch ToolConfigPatch) (ToolConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.tools.Apply(patch)
	if err != nil {
		return s.tools, err
	}
	s.tools = next
	return next, nil
}

// ToolConfig returns the current tool config
func (s *Session) ToolConfig() ToolConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tools
}

// IncreaseFontSize bumps the text size by one step
func (s *Session) IncreaseFontSize() float64 {
	return s.adjustFontSize(FontSizeStep)
}

// DecreaseFontSize lowers the text size by one step
func (s *Session) DecreaseFontSize() float64 {
	return s.adjustFontSize(-FontSizeStep)
}

func (s *Session) adjustFontSize(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools.FontSize = clampFontSize(s.tools.FontSize + delta)
	return s.tools.FontSize
}

// MarkSaved clears the modified flag after a successful save
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = false
}

// Revision identifies the current annotation state. It changes on every
// edit, undo and redo.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// MarkSavedAt clears the modified flag only if nothing changed since rev
// was read. It reports whether the flag was cleared.
func (s *Session) MarkSavedAt(rev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != rev {
		return false
	}
	s.modified = false
	return true
}

// Modified reports unsaved changes
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Document returns the loaded document, if any
func (s *Session) Document() (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.document == nil {
		return Document{}, false
	}
	return *s.document, true
}

// Annotations returns a deep copy of the current set
func (s *Session) Annotations() []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySet(s.annotations)
}

// Annotation looks up one annotation in the current set
func (s *Session) Annotation(annotationID string) (annotation.Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(annotationID)
	if i < 0 {
		return nil, false
	}
	return annotation.DeepCopy(s.annotations[i]), true
}

// View is a read-only snapshot of the session for renderers
type View struct {
	Document      *Document               `json:"document,omitempty"`
	Annotations   []annotation.Annotation `json:"annotations"`
	Tools         ToolConfig              `json:"tools"`
	HistoryIndex  int                     `json:"historyIndex"`
	HistoryLength int                     `json:"historyLength"`
	CanUndo       bool                    `json:"canUndo"`
	CanRedo       bool                    `json:"canRedo"`
	Modified      bool                    `json:"modified"`
}

// Snapshot returns a consistent view of the whole session
func (s *Session) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Annotations:   copySet(s.annotations),
		Tools:         s.tools,
		HistoryIndex:  s.index,
		HistoryLength: len(s.history),
		CanUndo:       s.index > 0,
		CanRedo:       s.index < len(s.history)-1,
		Modified:      s.modified,
	}
	if s.document != nil {
		doc := *s.document
		v.Document = &doc
	}
	return v
}

func (s *Session) indexOf(annotationID string) int {
	for i, a := range s.annotations {
		if a.Header().ID == annotationID {
			return i
		}
	}
	return -1
}

func (s *Session) documentName() string {
	if s.document == nil {
		return ""
	}
	return s.document.Name
}

func copySet(set []annotation.Annotation) []annotation.Annotation {
	out := make([]annotation.Annotation, len(set))
	for i, a := range set {
		out[i] = annotation.DeepCopy(a)
	}
	return out
}
