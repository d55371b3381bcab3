package annotation

import (
	"time"

	"github.com/GriffinCanCode/DocStudio/backend/internal/shared/id"
)

// Transparent is the sentinel colour for "no fill"
const Transparent = "transparent"

// Defaults applied when an Options field is left zero
const (
	DefaultColor          = "#000000"
	DefaultHighlightColor = "#FFFF00"
	DefaultFontFamily     = "Arial"
	DefaultFontSize       = 16.0
	DefaultTextWidth      = 200.0
	DefaultOpacity        = 0.4
	DefaultStrokeWidth    = 2.0
)

// Options carries caller style overrides plus the optional owner reference
type Options struct {
	Color           string
	FillColor       string
	BackgroundColor string
	FontFamily      string
	FontSize        float64
	Width           float64
	Opacity         float64
	StrokeWidth     float64
	ArrowType       ArrowType
	Page            *int
	Document        string
}

type shapeGeometry struct {
	width, height, radius float64
	points                int
}

var shapeDefaults = map[ShapeType]shapeGeometry{
	ShapeRectangle: {width: 100, height: 60},
	ShapeCircle:    {radius: 50},
	ShapeTriangle:  {width: 100, height: 80},
	ShapeStar:      {points: 5, radius: 50},
}

var now = func() time.Time { return time.Now().UTC() }

func newMeta(o Options) Meta {
	return Meta{
		ID:        id.NewAnnotationID().String(),
		CreatedAt: now(),
		Page:      copyPage(o.Page),
		Document:  o.Document,
	}
}

// NewText creates a text annotation anchored at (x, y)
func NewText(x, y float64, text string, o Options) Text {
	return Text{
		Meta:            newMeta(o),
		X:               x,
		Y:               y,
		Text:            text,
		FontSize:        orFloat(o.FontSize, DefaultFontSize),
		FontFamily:      orString(o.FontFamily, DefaultFontFamily),
		Color:           orString(o.Color, DefaultColor),
		BackgroundColor: orString(o.BackgroundColor, Transparent),
		Width:           orFloat(o.Width, DefaultTextWidth),
	}
}

// NewHighlight creates a highlight covering the given rectangle
func NewHighlight(x, y, width, height float64, o Options) Highlight {
	return Highlight{
		Meta:    newMeta(o),
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Color:   orString(o.Color, DefaultHighlightColor),
		Opacity: orFloat(o.Opacity, DefaultOpacity),
	}
}

// NewShape creates a shape with the default geometry for its type.
// Unknown shape types fall back to rectangle geometry but keep their name
// so Validate can reject them.
func NewShape(x, y float64, shapeType ShapeType, o Options) Shape {
	geom, ok := shapeDefaults[shapeType]
	if !ok {
		geom = shapeDefaults[ShapeRectangle]
	}
	return Shape{
		Meta:        newMeta(o),
		ShapeType:   shapeType,
		X:           x,
		Y:           y,
		Width:       geom.width,
		Height:      geom.height,
		Radius:      geom.radius,
		Points:      geom.points,
		Color:       orString(o.Color, DefaultColor),
		FillColor:   orString(o.FillColor, Transparent),
		StrokeWidth: orFloat(o.StrokeWidth, DefaultStrokeWidth),
	}
}

// NewArrow creates an arrow from (x1, y1) to (x2, y2)
func NewArrow(x1, y1, x2, y2 float64, o Options) Arrow {
	arrowType := o.ArrowType
	if arrowType == "" {
		arrowType = ArrowSingle
	}
	return Arrow{
		Meta:        newMeta(o),
		StartX:      x1,
		StartY:      y1,
		EndX:        x2,
		EndY:        y2,
		Color:       orString(o.Color, DefaultColor),
		StrokeWidth: orFloat(o.StrokeWidth, DefaultStrokeWidth),
		ArrowType:   arrowType,
	}
}

// NewDrawing creates a freehand stroke. The points are copied.
func NewDrawing(points []Point, o Options) Drawing {
	return Drawing{
		Meta:        newMeta(o),
		Points:      append([]Point(nil), points...),
		Color:       orString(o.Color, DefaultColor),
		StrokeWidth: orFloat(o.StrokeWidth, DefaultStrokeWidth),
	}
}

// Clone deep-copies a with a fresh id and creation time
func Clone(a Annotation) Annotation {
	if a == nil {
		return nil
	}
	meta := a.Header()
	meta.ID = id.NewAnnotationID().String()
	meta.CreatedAt = now()
	return DeepCopy(a).withHeader(meta)
}

// DeepCopy returns a copy of a that shares no mutable state, keeping its identity
func DeepCopy(a Annotation) Annotation {
	if a == nil {
		return nil
	}
	meta := a.Header()
	meta.Page = copyPage(meta.Page)

	switch v := a.(type) {
	case Drawing:
		v.Points = append([]Point(nil), v.Points...)
		v.Meta = meta
		return v
	default:
		return a.withHeader(meta)
	}
}

func copyPage(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
