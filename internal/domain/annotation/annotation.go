package annotation

import "time"

// Kind discriminates annotation variants
type Kind string

const (
	KindText      Kind = "text"
	KindHighlight Kind = "highlight"
	KindShape     Kind = "shape"
	KindArrow     Kind = "arrow"
	KindDrawing   Kind = "drawing"
)

// Kinds lists every annotation kind in declaration order
var Kinds = []Kind{KindText, KindHighlight, KindShape, KindArrow, KindDrawing}

// Valid reports whether k names a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindHighlight, KindShape, KindArrow, KindDrawing:
		return true
	}
	return false
}

// ShapeType selects the outline drawn by a shape annotation
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeStar      ShapeType = "star"
)

// Valid reports whether t names a known shape
func (t ShapeType) Valid() bool {
	switch t {
	case ShapeRectangle, ShapeCircle, ShapeTriangle, ShapeStar:
		return true
	}
	return false
}

// ArrowType selects which ends of an arrow carry heads
type ArrowType string

const (
	ArrowSingle ArrowType = "single"
	ArrowDouble ArrowType = "double"
	ArrowLeft   ArrowType = "left"
	ArrowRight  ArrowType = "right"
	ArrowUp     ArrowType = "up"
	ArrowDown   ArrowType = "down"
)

// Valid reports whether t names a known arrow style
func (t ArrowType) Valid() bool {
	switch t {
	case ArrowSingle, ArrowDouble, ArrowLeft, ArrowRight, ArrowUp, ArrowDown:
		return true
	}
	return false
}

// Meta holds the fields shared by every annotation
type Meta struct {
	ID        string    `json:"id" validate:"required"`
	CreatedAt time.Time `json:"created" validate:"required"`
	Page      *int      `json:"page,omitempty" validate:"omitempty,min=1"`
	Document  string    `json:"document,omitempty"`
}

// Annotation is a closed sum over Text, Highlight, Shape, Arrow and Drawing.
// Values are immutable once committed; edits produce modified copies.
type Annotation interface {
	Kind() Kind
	Header() Meta
	withHeader(Meta) Annotation
}

// Point is a canvas coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Text is a free-standing text box
type Text struct {
	Meta
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Text            string  `json:"text"`
	FontSize        float64 `json:"fontSize" validate:"gt=0"`
	FontFamily      string  `json:"fontFamily" validate:"required"`
	Color           string  `json:"color" validate:"required"`
	BackgroundColor string  `json:"backgroundColor"`
	Width           float64 `json:"width" validate:"gt=0"`
}

// Highlight is a translucent rectangle over document content
type Highlight struct {
	Meta
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width" validate:"gte=0"`
	Height  float64 `json:"height" validate:"gte=0"`
	Color   string  `json:"color" validate:"required"`
	Opacity float64 `json:"opacity" validate:"gte=0,lte=1"`
}

// Shape is an outlined rectangle, circle, triangle or star
type Shape struct {
	Meta
	ShapeType   ShapeType `json:"shapeType" validate:"oneof=rectangle circle triangle star"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width,omitempty" validate:"gte=0"`
	Height      float64   `json:"height,omitempty" validate:"gte=0"`
	Radius      float64   `json:"radius,omitempty" validate:"gte=0"`
	Points      int       `json:"points,omitempty" validate:"gte=0"`
	Color       string    `json:"color" validate:"required"`
	FillColor   string    `json:"fillColor"`
	StrokeWidth float64   `json:"strokeWidth" validate:"gt=0"`
}

// Arrow is a line segment with one or more heads
type Arrow struct {
	Meta
	StartX      float64   `json:"startX"`
	StartY      float64   `json:"startY"`
	EndX        float64   `json:"endX"`
	EndY        float64   `json:"endY"`
	Color       string    `json:"color" validate:"required"`
	StrokeWidth float64   `json:"strokeWidth" validate:"gt=0"`
	ArrowType   ArrowType `json:"arrowType" validate:"oneof=single double left right up down"`
}

// Drawing is a freehand polyline
type Drawing struct {
	Meta
	Points      []Point `json:"points" validate:"min=1"`
	Color       string  `json:"color" validate:"required"`
	StrokeWidth float64 `json:"strokeWidth" validate:"gt=0"`
}

func (Text) Kind() Kind      { return KindText }
func (Highlight) Kind() Kind { return KindHighlight }
func (Shape) Kind() Kind     { return KindShape }
func (Arrow) Kind() Kind     { return KindArrow }
func (Drawing) Kind() Kind   { return KindDrawing }

func (a Text) Header() Meta      { return a.Meta }
func (a Highlight) Header() Meta { return a.Meta }
func (a Shape) Header() Meta     { return a.Meta }
func (a Arrow) Header() Meta     { return a.Meta }
func (a Drawing) Header() Meta   { return a.Meta }

func (a Text) withHeader(m Meta) Annotation      { a.Meta = m; return a }
func (a Highlight) withHeader(m Meta) Annotation { a.Meta = m; return a }
func (a Shape) withHeader(m Meta) Annotation     { a.Meta = m; return a }
func (a Arrow) withHeader(m Meta) Annotation     { a.Meta = m; return a }
func (a Drawing) withHeader(m Meta) Annotation   { a.Meta = m; return a }

// IDOf returns the annotation's id, or "" for nil
func IDOf(a Annotation) string {
	if a == nil {
		return ""
	}
	return a.Header().ID
}
