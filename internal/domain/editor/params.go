package editor

import (
	"fmt"
	"math"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
)

// Params carries the caller-supplied geometry for a new annotation.
// Which fields are read depends on the kind.
type Params struct {
	X      float64              `json:"x"`
	Y      float64              `json:"y"`
	Width  float64              `json:"width,omitempty"`
	Height float64              `json:"height,omitempty"`
	EndX   float64              `json:"endX,omitempty"`
	EndY   float64              `json:"endY,omitempty"`
	Text   string               `json:"text,omitempty"`
	Shape  annotation.ShapeType `json:"shape,omitempty"`
	Points []annotation.Point   `json:"points,omitempty"`
	Page   *int                 `json:"page,omitempty"`
}

// Build constructs an annotation of kind from p, styled by cfg.
// Missing or malformed geometry returns ErrInvalidGeometry.
func Build(kind annotation.Kind, p Params, cfg ToolConfig, document string) (annotation.Annotation, error) {
	if err := checkParams(kind, p); err != nil {
		return nil, err
	}

	o := cfg.Options(kind)
	o.Page = p.Page
	o.Document = document

	var a annotation.Annotation
	switch kind {
	case annotation.KindText:
		a = annotation.NewText(p.X, p.Y, p.Text, o)
	case annotation.KindHighlight:
		a = annotation.NewHighlight(p.X, p.Y, p.Width, p.Height, o)
	case annotation.KindShape:
		shape := p.Shape
		if shape == "" {
			shape = cfg.Shape
		}
		a = annotation.NewShape(p.X, p.Y, shape, o)
	case annotation.KindArrow:
		a = annotation.NewArrow(p.X, p.Y, p.EndX, p.EndY, o)
	case annotation.KindDrawing:
		a = annotation.NewDrawing(p.Points, o)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidGeometry, kind)
	}
	return a, nil
}

func checkParams(kind annotation.Kind, p Params) error {
	coords := []float64{p.X, p.Y, p.Width, p.Height, p.EndX, p.EndY}
	for _, pt := range p.Points {
		coords = append(coords, pt.X, pt.Y)
	}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: %s: non-finite coordinate", ErrInvalidGeometry, kind)
		}
	}

	switch kind {
	case annotation.KindHighlight:
		if p.Width < 0 || p.Height < 0 {
			return fmt.Errorf("%w: highlight size %vx%v", ErrInvalidGeometry, p.Width, p.Height)
		}
	case annotation.KindDrawing:
		if len(p.Points) == 0 {
			return fmt.Errorf("%w: drawing needs at least one point", ErrInvalidGeometry)
		}
	}
	if p.Page != nil && *p.Page < 1 {
		return fmt.Errorf("%w: page %d", ErrInvalidGeometry, *p.Page)
	}
	return nil
}
