package annotation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(n int) *int { return &n }

func sampleSet() []Annotation {
	return []Annotation{
		NewText(10, 10, "hello", Options{Page: intPtr(1)}),
		NewHighlight(20, 20, 100, 20, Options{}),
		NewShape(5, 5, ShapeStar, Options{Color: "#FF0000", Document: "doc1.pdf"}),
		NewArrow(0, 0, 50, 40, Options{ArrowType: ArrowDouble, StrokeWidth: 3}),
		NewDrawing([]Point{{1, 1}, {2, 3}, {5, 8}}, Options{Page: intPtr(2)}),
	}
}

func TestFactoryDefaults(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		a := NewText(1, 2, "note", Options{})
		assert.Equal(t, 16.0, a.FontSize)
		assert.Equal(t, "Arial", a.FontFamily)
		assert.Equal(t, "#000000", a.Color)
		assert.Equal(t, Transparent, a.BackgroundColor)
		assert.Equal(t, 200.0, a.Width)
		assert.Equal(t, KindText, a.Kind())
	})

	t.Run("highlight", func(t *testing.T) {
		a := NewHighlight(0, 0, 10, 10, Options{})
		assert.Equal(t, "#FFFF00", a.Color)
		assert.Equal(t, 0.4, a.Opacity)
	})

	t.Run("arrow", func(t *testing.T) {
		a := NewArrow(0, 0, 1, 1, Options{})
		assert.Equal(t, ArrowSingle, a.ArrowType)
		assert.Equal(t, 2.0, a.StrokeWidth)
	})

	t.Run("drawing copies points", func(t *testing.T) {
		pts := []Point{{1, 1}}
		a := NewDrawing(pts, Options{})
		pts[0].X = 99
		assert.Equal(t, 1.0, a.Points[0].X)
	})

	t.Run("style overrides defaults", func(t *testing.T) {
		a := NewHighlight(0, 0, 10, 10, Options{Color: "#00FF00", Opacity: 0.8})
		assert.Equal(t, "#00FF00", a.Color)
		assert.Equal(t, 0.8, a.Opacity)
	})
}

func TestShapeGeometry(t *testing.T) {
	tests := []struct {
		shape  ShapeType
		width  float64
		height float64
		radius float64
		points int
	}{
		{ShapeRectangle, 100, 60, 0, 0},
		{ShapeCircle, 0, 0, 50, 0},
		{ShapeTriangle, 100, 80, 0, 0},
		{ShapeStar, 0, 0, 50, 5},
		{ShapeType("hexagon"), 100, 60, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			s := NewShape(0, 0, tt.shape, Options{})
			assert.Equal(t, tt.width, s.Width)
			assert.Equal(t, tt.height, s.Height)
			assert.Equal(t, tt.radius, s.Radius)
			assert.Equal(t, tt.points, s.Points)
			assert.Equal(t, Transparent, s.FillColor)
		})
	}
}

func TestUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		a := NewText(0, 0, "", Options{})
		require.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.True(t, strings.HasPrefix(a.ID, "ann_"))
	}
}

func TestClone(t *testing.T) {
	for _, src := range sampleSet() {
		t.Run(string(src.Kind()), func(t *testing.T) {
			c := Clone(src)

			assert.NotEqual(t, src.Header().ID, c.Header().ID)
			assert.Equal(t, src.Kind(), c.Kind())

			stripped := c.withHeader(Meta{
				ID:        src.Header().ID,
				CreatedAt: src.Header().CreatedAt,
				Page:      c.Header().Page,
				Document:  c.Header().Document,
			})
			assert.Equal(t, src, stripped)
		})
	}

	t.Run("shares no mutable state", func(t *testing.T) {
		src := NewDrawing([]Point{{1, 1}, {2, 2}}, Options{Page: intPtr(3)})
		c := Clone(src).(Drawing)

		c.Points[0].X = 42
		*c.Page = 9

		assert.Equal(t, 1.0, src.Points[0].X)
		assert.Equal(t, 3, *src.Page)
	})
}

func TestValidate(t *testing.T) {
	valid := sampleSet()
	for _, a := range valid {
		assert.NoError(t, Validate(a), "kind %s", a.Kind())
	}

	missingID := NewText(0, 0, "x", Options{})
	missingID.ID = ""

	missingCreated := NewText(0, 0, "x", Options{})
	missingCreated.CreatedAt = time.Time{}

	badArrow := NewArrow(0, 0, 1, 1, Options{ArrowType: "sideways"})
	emptyDrawing := NewDrawing(nil, Options{})
	badOpacity := NewHighlight(0, 0, 1, 1, Options{Opacity: 1.5})
	badPage := NewText(0, 0, "x", Options{Page: intPtr(0)})

	tests := []struct {
		name string
		a    Annotation
	}{
		{"nil", nil},
		{"missing id", missingID},
		{"missing created", missingCreated},
		{"unknown arrow type", badArrow},
		{"unknown shape type", NewShape(0, 0, "hexagon", Options{})},
		{"empty drawing", emptyDrawing},
		{"opacity out of range", badOpacity},
		{"page below one", badPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.a)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	codec := NewCodec(zap.NewNop())
	set := sampleSet()

	text, err := codec.ExportAll(set)
	require.NoError(t, err)
	assert.Contains(t, text, "\n  ")
	assert.Contains(t, text, `"type": "highlight"`)

	restored := codec.ImportAll(text)
	require.Len(t, restored, len(set))
	for i := range set {
		assert.Equal(t, set[i], restored[i])
	}
}

func TestExportEmpty(t *testing.T) {
	codec := NewCodec(nil)

	text, err := codec.ExportAll(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Empty(t, codec.ImportAll(text))
}

func TestImportMalformed(t *testing.T) {
	codec := NewCodec(zap.NewNop())

	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{{{"},
		{"object instead of array", `{"id":"x"}`},
		{"unknown type", `[{"id":"ann_1","type":"sticker","created":"2024-01-01T00:00:00Z"}]`},
		{"missing type", `[{"id":"ann_1","created":"2024-01-01T00:00:00Z"}]`},
		{"missing id", `[{"type":"highlight","created":"2024-01-01T00:00:00Z","color":"#FF0","opacity":0.4}]`},
		{"missing created", `[{"id":"ann_1","type":"highlight","color":"#FF0","opacity":0.4}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := codec.ImportAll(tt.input)
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestMergeAndFilter(t *testing.T) {
	set := sampleSet()
	first, second := set[:2], set[2:]

	merged := Merge(second, first)
	require.Len(t, merged, len(set))
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Header().CreatedAt.Before(merged[i-1].Header().CreatedAt))
	}

	assert.Len(t, FilterByKind(set, KindArrow), 1)
	assert.Empty(t, FilterByKind(set[:1], KindDrawing))

	onPage2 := FilterByPage(set, 2)
	require.Len(t, onPage2, 1)
	assert.Equal(t, KindDrawing, onPage2[0].Kind())
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name string
		a    Annotation
		want Rect
	}{
		{"highlight", NewHighlight(20, 20, 100, 20, Options{}), Rect{20, 20, 120, 40}},
		{"circle", NewShape(10, 10, ShapeCircle, Options{}), Rect{10, 10, 110, 110}},
		{"reversed arrow", NewArrow(50, 40, 0, 0, Options{}), Rect{0, 0, 50, 40}},
		{"drawing", NewDrawing([]Point{{3, 9}, {-1, 4}, {7, 2}}, Options{}), Rect{-1, 2, 7, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bounds(tt.a))
		})
	}

	extent, ok := Extent(sampleSet())
	require.True(t, ok)
	assert.Equal(t, 0.0, extent.MinX)
	assert.Equal(t, 210.0, extent.MaxX)

	_, ok = Extent(nil)
	assert.False(t, ok)
}
