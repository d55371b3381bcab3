package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gonum.org/v1/gonum/floats"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
)

var ErrNothingToExport = errors.New("no annotations to export")

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	mmPerPoint = 25.4 / 72
	headLength = 4.0
)

// Options control the exported page
type Options struct {
	Title  string
	Margin float64
}

// RGB is a parsed colour
type RGB struct {
	R, G, B int
}

// ParseColor parses #RRGGBB or #RGB. "transparent" and empty strings are
// not colours.
func ParseColor(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: int((v >> 16) & 0xff), G: int((v >> 8) & 0xff), B: int(v & 0xff)}, true
}

// transform maps canvas coordinates into the printable area of the page
type transform struct {
	minX, minY float64
	scale      float64
	left, top  float64
}

func newTransform(extent annotation.Rect, margin, top float64) transform {
	availW := pageWidth - 2*margin
	availH := pageHeight - margin - top
	w := math.Max(extent.Width(), 1)
	h := math.Max(extent.Height(), 1)
	return transform{
		minX:  extent.MinX,
		minY:  extent.MinY,
		scale: floats.Min([]float64{availW / w, availH / h, 1}),
		left:  margin,
		top:   top,
	}
}

func (t transform) x(v float64) float64 { return t.left + (v-t.minX)*t.scale }
func (t transform) y(v float64) float64 { return t.top + (v-t.minY)*t.scale }
func (t transform) d(v float64) float64 { return v * t.scale }

// ExportPDF draws set as vector shapes on a single A4 page
func ExportPDF(w io.Writer, set []annotation.Annotation, opts Options) error {
	extent, ok := annotation.Extent(set)
	if !ok {
		return ErrNothingToExport
	}
	if opts.Margin <= 0 {
		opts.Margin = 10
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("DocStudio", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	top := opts.Margin
	if opts.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(opts.Margin, opts.Margin+5, tr(opts.Title))
		top += 10
	}
	t := newTransform(extent, opts.Margin, top)

	for _, a := range set {
		switch v := a.(type) {
		case annotation.Highlight:
			drawHighlight(pdf, t, v)
		case annotation.Shape:
			drawShape(pdf, t, v)
		case annotation.Arrow:
			drawArrow(pdf, t, v)
		case annotation.Drawing:
			drawDrawing(pdf, t, v)
		case annotation.Text:
			drawText(pdf, t, tr, v)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDraw(pdf *gofpdf.Fpdf, color string, width float64) {
	c, ok := ParseColor(color)
	if !ok {
		c = RGB{}
	}
	pdf.SetDrawColor(c.R, c.G, c.B)
	pdf.SetLineWidth(math.Max(width, 0.1))
}

// setFill returns the style string for the fill colour
func setFill(pdf *gofpdf.Fpdf, color string) string {
	c, ok := ParseColor(color)
	if !ok {
		return "D"
	}
	pdf.SetFillColor(c.R, c.G, c.B)
	return "FD"
}

func drawHighlight(pdf *gofpdf.Fpdf, t transform, h annotation.Highlight) {
	c, ok := ParseColor(h.Color)
	if !ok {
		return
	}
	pdf.SetAlpha(h.Opacity, "Multiply")
	pdf.SetFillColor(c.R, c.G, c.B)
	pdf.Rect(t.x(h.X), t.y(h.Y), t.d(h.Width), t.d(h.Height), "F")
	pdf.SetAlpha(1, "Normal")
}

func drawShape(pdf *gofpdf.Fpdf, t transform, s annotation.Shape) {
	setDraw(pdf, s.Color, t.d(s.StrokeWidth))
	style := setFill(pdf, s.FillColor)

	switch s.ShapeType {
	case annotation.ShapeCircle:
		pdf.Circle(t.x(s.X+s.Radius), t.y(s.Y+s.Radius), t.d(s.Radius), style)
	case annotation.ShapeTriangle:
		pdf.Polygon([]gofpdf.PointType{
			{X: t.x(s.X + s.Width/2), Y: t.y(s.Y)},
			{X: t.x(s.X + s.Width), Y: t.y(s.Y + s.Height)},
			{X: t.x(s.X), Y: t.y(s.Y + s.Height)},
		}, style)
	case annotation.ShapeStar:
		pdf.Polygon(starPoints(t, s), style)
	default:
		pdf.Rect(t.x(s.X), t.y(s.Y), t.d(s.Width), t.d(s.Height), style)
	}
}

func starPoints(t transform, s annotation.Shape) []gofpdf.PointType {
	n := s.Points
	if n < 3 {
		n = 5
	}
	cx, cy := s.X+s.Radius, s.Y+s.Radius
	out := make([]gofpdf.PointType, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		r := s.Radius
		if i%2 == 1 {
			r /= 2
		}
		angle := math.Pi*float64(i)/float64(n) - math.Pi/2
		out = append(out, gofpdf.PointType{
			X: t.x(cx + r*math.Cos(angle)),
			Y: t.y(cy + r*math.Sin(angle)),
		})
	}
	return out
}

func drawArrow(pdf *gofpdf.Fpdf, t transform, a annotation.Arrow) {
	setDraw(pdf, a.Color, t.d(a.StrokeWidth))
	x1, y1, x2, y2 := t.x(a.StartX), t.y(a.StartY), t.x(a.EndX), t.y(a.EndY)
	pdf.Line(x1, y1, x2, y2)

	arrowHead(pdf, x1, y1, x2, y2)
	if a.ArrowType == annotation.ArrowDouble {
		arrowHead(pdf, x2, y2, x1, y1)
	}
}

// arrowHead draws a head at (x2, y2) pointing away from (x1, y1)
func arrowHead(pdf *gofpdf.Fpdf, x1, y1, x2, y2 float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	for _, side := range []float64{-math.Pi / 6, math.Pi / 6} {
		pdf.Line(x2, y2, x2-headLength*math.Cos(angle+side), y2-headLength*math.Sin(angle+side))
	}
}

func drawDrawing(pdf *gofpdf.Fpdf, t transform, d annotation.Drawing) {
	setDraw(pdf, d.Color, t.d(d.StrokeWidth))
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for i := 1; i < len(d.Points); i++ {
		pdf.Line(t.x(d.Points[i-1].X), t.y(d.Points[i-1].Y), t.x(d.Points[i].X), t.y(d.Points[i].Y))
	}
	pdf.SetLineCapStyle("butt")
	pdf.SetLineJoinStyle("miter")
}

func drawText(pdf *gofpdf.Fpdf, t transform, tr func(string) string, a annotation.Text) {
	if bg, ok := ParseColor(a.BackgroundColor); ok {
		pdf.SetFillColor(bg.R, bg.G, bg.B)
		pdf.Rect(t.x(a.X), t.y(a.Y), t.d(a.Width), t.d(a.FontSize), "F")
	}
	c, _ := ParseColor(a.Color)
	pdf.SetTextColor(c.R, c.G, c.B)
	pdf.SetFont("Helvetica", "", math.Max(t.d(a.FontSize)/mmPerPoint, 4))
	pdf.Text(t.x(a.X), t.y(a.Y+a.FontSize), tr(a.Text))
}
