package editor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
)

func newLoaded(t *testing.T) *Session {
	t.Helper()
	s := NewSession(DefaultToolConfig())
	s.LoadDocument(Document{Name: "doc1.png", Path: "/tmp/doc1.png", Size: 10})
	return s
}

func ids(set []annotation.Annotation) []string {
	out := make([]string, len(set))
	for i, a := range set {
		out[i] = a.Header().ID
	}
	return out
}

func assertCursorConsistent(t *testing.T, s *Session) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		assert.Equal(t, -1, s.index)
		return
	}
	require.GreaterOrEqual(t, s.index, 0)
	require.Less(t, s.index, len(s.history))
	assert.Equal(t, ids(s.history[s.index]), ids(s.annotations))
}

func TestNewSessionEmpty(t *testing.T) {
	s := NewSession(DefaultToolConfig())

	assert.Empty(t, s.Annotations())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.False(t, s.Modified())
	_, ok := s.Document()
	assert.False(t, ok)
	assertCursorConsistent(t, s)
}

func TestAddAnnotationAdvancesCursor(t *testing.T) {
	s := newLoaded(t)

	params := []struct {
		kind annotation.Kind
		p    Params
	}{
		{annotation.KindText, Params{X: 10, Y: 10, Text: "T1"}},
		{annotation.KindHighlight, Params{X: 20, Y: 20, Width: 100, Height: 20}},
		{annotation.KindShape, Params{X: 1, Y: 1, Shape: annotation.ShapeCircle}},
		{annotation.KindArrow, Params{X: 0, Y: 0, EndX: 5, EndY: 5}},
		{annotation.KindDrawing, Params{Points: []annotation.Point{{X: 1, Y: 2}}}},
	}

	for i, tt := range params {
		_, err := s.AddAnnotation(tt.kind, tt.p)
		require.NoError(t, err)

		s.mu.RLock()
		assert.Equal(t, len(s.history)-1, s.index)
		s.mu.RUnlock()
		assert.Len(t, s.Annotations(), i+1)
		assertCursorConsistent(t, s)
	}
	assert.True(t, s.Modified())
}

func TestEarlierSnapshotsUnchanged(t *testing.T) {
	s := newLoaded(t)

	_, err := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	require.NoError(t, err)

	s.mu.RLock()
	first := s.history[0]
	s.mu.RUnlock()

	_, err = s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})
	require.NoError(t, err)

	assert.Len(t, first, 1)
}

func TestUndoRedoScenario(t *testing.T) {
	s := newLoaded(t)

	t1, err := s.AddAnnotation(annotation.KindText, Params{X: 10, Y: 10, Text: "T1"})
	require.NoError(t, err)
	_, err = s.AddAnnotation(annotation.KindHighlight, Params{X: 20, Y: 20, Width: 100, Height: 20})
	require.NoError(t, err)

	assert.True(t, s.Undo())
	assert.Equal(t, []string{t1.Header().ID}, ids(s.Annotations()))
	assert.True(t, s.CanRedo())

	s1, err := s.AddAnnotation(annotation.KindShape, Params{X: 5, Y: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{t1.Header().ID, s1.Header().ID}, ids(s.Annotations()))
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
	assertCursorConsistent(t, s)
}

func TestUndoThenRedoRestores(t *testing.T) {
	s := newLoaded(t)
	for i := 0; i < 4; i++ {
		_, err := s.AddAnnotation(annotation.KindText, Params{X: float64(i), Y: float64(i)})
		require.NoError(t, err)
	}

	for s.CanUndo() {
		before := ids(s.Annotations())
		require.True(t, s.Undo())
		require.True(t, s.CanRedo())
		require.True(t, s.Redo())
		assert.Equal(t, before, ids(s.Annotations()))
		require.True(t, s.Undo())
	}
	assertCursorConsistent(t, s)
}

func TestHistoryBoundsAreNoOps(t *testing.T) {
	s := newLoaded(t)

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.False(t, s.Modified())

	_, err := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	require.NoError(t, err)
	s.MarkSaved()

	assert.False(t, s.Undo(), "first snapshot cannot be undone")
	assert.False(t, s.Modified())
	assert.Len(t, s.Annotations(), 1)
}

func TestUndoRedoSetModified(t *testing.T) {
	s := newLoaded(t)
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})

	s.MarkSaved()
	require.True(t, s.Undo())
	assert.True(t, s.Modified())

	s.MarkSaved()
	require.True(t, s.Redo())
	assert.True(t, s.Modified())
}

func TestLoadDocumentResets(t *testing.T) {
	s := newLoaded(t)
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})

	s.LoadDocument(Document{Name: "doc2.pdf"})

	assert.Empty(t, s.Annotations())
	assert.False(t, s.Modified())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	doc, ok := s.Document()
	require.True(t, ok)
	assert.Equal(t, "doc2.pdf", doc.Name)
	assertCursorConsistent(t, s)
}

func TestRemoveAnnotationIsUndoable(t *testing.T) {
	s := newLoaded(t)
	a, _ := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	b, _ := s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})

	require.NoError(t, s.RemoveAnnotation(a.Header().ID))
	assert.Equal(t, []string{b.Header().ID}, ids(s.Annotations()))

	require.True(t, s.Undo())
	assert.Equal(t, []string{a.Header().ID, b.Header().ID}, ids(s.Annotations()))

	err := s.RemoveAnnotation("ann_missing")
	assert.ErrorIs(t, err, ErrAnnotationNotFound)
	assertCursorConsistent(t, s)
}

func TestUpdateAnnotation(t *testing.T) {
	s := newLoaded(t)
	a, _ := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1, Text: "old"})

	updated, err := s.UpdateAnnotation(a.Header().ID, func(cur annotation.Annotation) annotation.Annotation {
		txt := cur.(annotation.Text)
		txt.Text = "new"
		return txt
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.(annotation.Text).Text)

	got, ok := s.Annotation(a.Header().ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.(annotation.Text).Text)

	require.True(t, s.Undo())
	got, _ = s.Annotation(a.Header().ID)
	assert.Equal(t, "old", got.(annotation.Text).Text)

	t.Run("identity change rejected", func(t *testing.T) {
		_, err := s.UpdateAnnotation(a.Header().ID, func(cur annotation.Annotation) annotation.Annotation {
			return annotation.Clone(cur)
		})
		assert.ErrorIs(t, err, ErrIdentityChanged)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.UpdateAnnotation("ann_missing", func(cur annotation.Annotation) annotation.Annotation { return cur })
		assert.ErrorIs(t, err, ErrAnnotationNotFound)
	})
}

func TestInvalidGeometryFailsFast(t *testing.T) {
	tests := []struct {
		name string
		kind annotation.Kind
		p    Params
	}{
		{"negative highlight", annotation.KindHighlight, Params{Width: -5, Height: 10}},
		{"empty drawing", annotation.KindDrawing, Params{}},
		{"nan coordinate", annotation.KindText, Params{X: math.NaN()}},
		{"unknown kind", annotation.Kind("sticker"), Params{}},
		{"page zero", annotation.KindText, Params{Page: new(int)}},
		{"bad shape type", annotation.KindShape, Params{Shape: "hexagon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoaded(t)
			_, err := s.AddAnnotation(tt.kind, tt.p)
			assert.ErrorIs(t, err, ErrInvalidGeometry)
			assert.Empty(t, s.Annotations())
			assert.False(t, s.Modified())
		})
	}
}

func TestCommitRejectsDuplicateID(t *testing.T) {
	s := newLoaded(t)
	a := annotation.NewText(1, 1, "x", annotation.Options{})

	require.NoError(t, s.Commit(a))
	assert.ErrorIs(t, s.Commit(a), ErrDuplicateID)
}

func TestReplaceAndClear(t *testing.T) {
	s := newLoaded(t)
	set := []annotation.Annotation{
		annotation.NewText(1, 1, "a", annotation.Options{}),
		annotation.NewHighlight(0, 0, 5, 5, annotation.Options{}),
	}

	require.NoError(t, s.ReplaceAnnotations(set))
	assert.Len(t, s.Annotations(), 2)

	s.Clear()
	assert.Empty(t, s.Annotations())
	require.True(t, s.Undo())
	assert.Len(t, s.Annotations(), 2)

	dup := []annotation.Annotation{set[0], set[0]}
	assert.ErrorIs(t, s.ReplaceAnnotations(dup), ErrDuplicateID)
}

func TestToolConfig(t *testing.T) {
	s := NewSession(DefaultToolConfig())

	tool := ToolShape
	color := "#FF0000"
	cfg, err := s.SetToolConfig(ToolConfigPatch{Tool: &tool, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, ToolShape, cfg.Tool)
	assert.Equal(t, "#FF0000", cfg.Color)
	assert.Equal(t, 2.0, cfg.StrokeWidth, "unset fields keep their value")

	bad := Tool("eraser")
	_, err = s.SetToolConfig(ToolConfigPatch{Tool: &bad})
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, ToolShape, s.ToolConfig().Tool)

	opacity := 2.0
	_, err = s.SetToolConfig(ToolConfigPatch{Opacity: &opacity})
	assert.ErrorIs(t, err, ErrInvalidToolConfig)
}

func TestToolConfigStylesAnnotations(t *testing.T) {
	s := newLoaded(t)
	color := "#00FF00"
	width := 5.0
	_, err := s.SetToolConfig(ToolConfigPatch{Color: &color, StrokeWidth: &width})
	require.NoError(t, err)

	a, err := s.AddAnnotation(annotation.KindArrow, Params{EndX: 10, EndY: 10})
	require.NoError(t, err)

	arrow := a.(annotation.Arrow)
	assert.Equal(t, "#00FF00", arrow.Color)
	assert.Equal(t, 5.0, arrow.StrokeWidth)
	assert.Equal(t, "doc1.png", arrow.Document)
}

func TestFontSizeClamped(t *testing.T) {
	s := NewSession(DefaultToolConfig())

	assert.Equal(t, 18.0, s.IncreaseFontSize())
	for i := 0; i < 100; i++ {
		s.IncreaseFontSize()
	}
	assert.Equal(t, MaxFontSize, s.ToolConfig().FontSize)

	for i := 0; i < 100; i++ {
		s.DecreaseFontSize()
	}
	assert.Equal(t, MinFontSize, s.ToolConfig().FontSize)
}

func TestSnapshotView(t *testing.T) {
	s := newLoaded(t)
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	_, _ = s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})
	s.Undo()

	v := s.Snapshot()
	assert.Equal(t, 0, v.HistoryIndex)
	assert.Equal(t, 2, v.HistoryLength)
	assert.False(t, v.CanUndo)
	assert.True(t, v.CanRedo)
	require.NotNil(t, v.Document)
	assert.Equal(t, "doc1.png", v.Document.Name)
	assert.Len(t, v.Annotations, 1)
}

func TestMarkSavedAtKeepsLaterEdits(t *testing.T) {
	s := newLoaded(t)
	_, err := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	require.NoError(t, err)

	rev := s.Revision()
	_, err = s.AddAnnotation(annotation.KindText, Params{X: 2, Y: 2})
	require.NoError(t, err)

	assert.False(t, s.MarkSavedAt(rev), "an edit after the revision was read")
	assert.True(t, s.Modified())

	rev = s.Revision()
	assert.True(t, s.MarkSavedAt(rev))
	assert.False(t, s.Modified())

	require.True(t, s.Undo())
	assert.NotEqual(t, rev, s.Revision())
}

func TestToolConfigRejectsUnknownStyles(t *testing.T) {
	s := NewSession(DefaultToolConfig())

	shape := annotation.ShapeType("hexagon")
	_, err := s.SetToolConfig(ToolConfigPatch{Shape: &shape})
	assert.ErrorIs(t, err, ErrInvalidToolConfig)

	arrow := annotation.ArrowType("curly")
	_, err = s.SetToolConfig(ToolConfigPatch{Arrow: &arrow})
	assert.ErrorIs(t, err, ErrInvalidToolConfig)

	assert.Equal(t, annotation.ShapeRectangle, s.ToolConfig().Shape)
	assert.Equal(t, annotation.ArrowSingle, s.ToolConfig().Arrow)

	star, double := annotation.ShapeStar, annotation.ArrowDouble
	cfg, err := s.SetToolConfig(ToolConfigPatch{Shape: &star, Arrow: &double})
	require.NoError(t, err)
	assert.Equal(t, annotation.ShapeStar, cfg.Shape)
	assert.Equal(t, annotation.ArrowDouble, cfg.Arrow)
}

func TestMergeAnnotations(t *testing.T) {
	s := newLoaded(t)
	first, err := s.AddAnnotation(annotation.KindText, Params{X: 1, Y: 1})
	require.NoError(t, err)

	incoming := []annotation.Annotation{annotation.NewHighlight(0, 0, 5, 5, annotation.Options{})}
	require.NoError(t, s.MergeAnnotations(incoming))
	assert.Equal(t, []string{first.Header().ID, incoming[0].Header().ID}, ids(s.Annotations()))
	assertCursorConsistent(t, s)

	assert.ErrorIs(t, s.MergeAnnotations(incoming), ErrDuplicateID)
	require.True(t, s.Undo())
	assert.Len(t, s.Annotations(), 1)
}
