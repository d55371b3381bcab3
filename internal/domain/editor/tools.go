package editor

import (
	"fmt"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
)

// Tool is the active drawing tool
type Tool string

const (
	ToolCursor      Tool = "cursor"
	ToolText        Tool = "text"
	ToolHighlighter Tool = "highlighter"
	ToolShape       Tool = "shape"
	ToolArrow       Tool = "arrow"
	ToolDrawing     Tool = "drawing"
)

// Valid reports whether t names a known tool
func (t Tool) Valid() bool {
	switch t {
	case ToolCursor, ToolText, ToolHighlighter, ToolShape, ToolArrow, ToolDrawing:
		return true
	}
	return false
}

// Kind maps a tool to the annotation kind it produces. ok is false for the cursor.
func (t Tool) Kind() (annotation.Kind, bool) {
	switch t {
	case ToolText:
		return annotation.KindText, true
	case ToolHighlighter:
		return annotation.KindHighlight, true
	case ToolShape:
		return annotation.KindShape, true
	case ToolArrow:
		return annotation.KindArrow, true
	case ToolDrawing:
		return annotation.KindDrawing, true
	}
	return "", false
}

// Font size bounds for IncreaseFontSize/DecreaseFontSize
const (
	MinFontSize  = 8.0
	MaxFontSize  = 96.0
	FontSizeStep = 2.0
)

// ToolConfig is the selected tool and its style parameters
type ToolConfig struct {
	Tool        Tool                 `json:"tool"`
	Color       string               `json:"color"`
	Shape       annotation.ShapeType `json:"shape"`
	Arrow       annotation.ArrowType `json:"arrow"`
	FontSize    float64              `json:"fontSize"`
	StrokeWidth float64              `json:"strokeWidth"`
	Opacity     float64              `json:"opacity"`
}

// DefaultToolConfig returns the configuration used before preferences load
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Tool:        ToolCursor,
		Color:       annotation.DefaultHighlightColor,
		Shape:       annotation.ShapeRectangle,
		Arrow:       annotation.ArrowSingle,
		FontSize:    annotation.DefaultFontSize,
		StrokeWidth: annotation.DefaultStrokeWidth,
		Opacity:     annotation.DefaultOpacity,
	}
}

// ToolConfigPatch is a partial ToolConfig; nil fields are left unchanged
type ToolConfigPatch struct {
	Tool        *Tool                 `json:"tool,omitempty"`
	Color       *string               `json:"color,omitempty"`
	Shape       *annotation.ShapeType `json:"shape,omitempty"`
	Arrow       *annotation.ArrowType `json:"arrow,omitempty"`
	FontSize    *float64              `json:"fontSize,omitempty"`
	StrokeWidth *float64              `json:"strokeWidth,omitempty"`
	Opacity     *float64              `json:"opacity,omitempty"`
}

// Apply merges p into c
func (c ToolConfig) Apply(p ToolConfigPatch) (ToolConfig, error) {
	if p.Tool != nil {
		if !p.Tool.Valid() {
			return c, fmt.Errorf("%w: %q", ErrUnknownTool, *p.Tool)
		}
		c.Tool = *p.Tool
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Shape != nil {
		if !p.Shape.Valid() {
			return c, fmt.Errorf("%w: shape %q", ErrInvalidToolConfig, *p.Shape)
		}
		c.Shape = *p.Shape
	}
	if p.Arrow != nil {
		if !p.Arrow.Valid() {
			return c, fmt.Errorf("%w: arrow %q", ErrInvalidToolConfig, *p.Arrow)
		}
		c.Arrow = *p.Arrow
	}
	if p.FontSize != nil {
		if *p.FontSize <= 0 {
			return c, fmt.Errorf("%w: font size %v", ErrInvalidToolConfig, *p.FontSize)
		}
		c.FontSize = *p.FontSize
	}
	if p.StrokeWidth != nil {
		if *p.StrokeWidth <= 0 {
			return c, fmt.Errorf("%w: stroke width %v", ErrInvalidToolConfig, *p.StrokeWidth)
		}
		c.StrokeWidth = *p.StrokeWidth
	}
	if p.Opacity != nil {
		if *p.Opacity < 0 || *p.Opacity > 1 {
			return c, fmt.Errorf("%w: opacity %v", ErrInvalidToolConfig, *p.Opacity)
		}
		c.Opacity = *p.Opacity
	}
	return c, nil
}

// Options converts the style part of c into factory options for kind
func (c ToolConfig) Options(kind annotation.Kind) annotation.Options {
	o := annotation.Options{Color: c.Color}
	switch kind {
	case annotation.KindText:
		o.FontSize = c.FontSize
	case annotation.KindHighlight:
		o.Opacity = c.Opacity
	case annotation.KindShape, annotation.KindDrawing:
		o.StrokeWidth = c.StrokeWidth
	case annotation.KindArrow:
		o.StrokeWidth = c.StrokeWidth
		o.ArrowType = c.Arrow
	}
	return o
}

func clampFontSize(v float64) float64 {
	if v < MinFontSize {
		return MinFontSize
	}
	if v > MaxFontSize {
		return MaxFontSize
	}
	return v
}
