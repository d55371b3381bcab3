// Package gesture turns pointer down/move/up sequences into annotations.
//
// A gesture builds a provisional annotation on pointer-down, reshapes it on
// every move, and commits it to the editor exactly once on pointer-up. Moves
// never touch history.
package gesture

import (
	"errors"
	"math"
	"sync"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/annotation"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/editor"
)

var ErrGestureInProgress = errors.New("gesture already in progress")

// Target is the editor a dispatcher commits into
type Target interface {
	ToolConfig() editor.ToolConfig
	Commit(a annotation.Annotation) error
	Document() (editor.Document, bool)
}

// Event is one pointer sample
type Event struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text,omitempty"`
	Page *int    `json:"page,omitempty"`
}

// Dispatcher tracks at most one in-flight gesture
type Dispatcher struct {
	mu          sync.Mutex
	target      Target
	origin      annotation.Point
	provisional annotation.Annotation
	moved       bool
}

// NewDispatcher creates a dispatcher committing into target
func NewDispatcher(target Target) *Dispatcher {
	return &Dispatcher{target: target}
}

// Down starts a gesture for the selected tool. The cursor tool starts
// nothing and returns nil.
func (d *Dispatcher) Down(ev Event) (annotation.Annotation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provisional != nil {
		return nil, ErrGestureInProgress
	}

	cfg := d.target.ToolConfig()
	kind, ok := cfg.Tool.Kind()
	if !ok {
		return nil, nil
	}

	params := editor.Params{X: ev.X, Y: ev.Y, Text: ev.Text, Page: ev.Page}
	switch kind {
	case annotation.KindArrow:
		params.EndX, params.EndY = ev.X, ev.Y
	case annotation.KindDrawing:
		params.Points = []annotation.Point{{X: ev.X, Y: ev.Y}}
	}

	var docName string
	if doc, ok := d.target.Document(); ok {
		docName = doc.Name
	}
	a, err := editor.Build(kind, params, cfg, docName)
	if err != nil {
		return nil, err
	}

	d.origin = annotation.Point{X: ev.X, Y: ev.Y}
	d.provisional = a
	d.moved = false
	return annotation.DeepCopy(a), nil
}

// Move reshapes the provisional annotation. Without a gesture it does nothing.
func (d *Dispatcher) Move(ev Event) (annotation.Annotation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provisional == nil {
		return nil, nil
	}
	if err := finite(ev); err != nil {
		return nil, err
	}
	d.reshape(ev)
	return annotation.DeepCopy(d.provisional), nil
}

// Up finishes the gesture and commits it. Degenerate gestures (a
// zero-area highlight or a zero-length arrow) are discarded and return nil.
func (d *Dispatcher) Up(ev Event) (annotation.Annotation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provisional == nil {
		return nil, nil
	}
	if err := finite(ev); err != nil {
		return nil, err
	}
	d.reshape(ev)

	final := d.provisional
	d.provisional = nil
	if degenerate(final) {
		return nil, nil
	}
	if err := d.target.Commit(final); err != nil {
		return nil, err
	}
	return annotation.DeepCopy(final), nil
}

// Cancel drops the in-flight gesture without committing
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.provisional = nil
}

// Provisional returns a copy of the in-flight annotation for preview
func (d *Dispatcher) Provisional() (annotation.Annotation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provisional == nil {
		return nil, false
	}
	return annotation.DeepCopy(d.provisional), true
}

func (d *Dispatcher) reshape(ev Event) {
	dx, dy := ev.X-d.origin.X, ev.Y-d.origin.Y
	if dx != 0 || dy != 0 {
		d.moved = true
	}

	switch a := d.provisional.(type) {
	case annotation.Text:
		a.X, a.Y = ev.X, ev.Y
		d.provisional = a
	case annotation.Highlight:
		a.X, a.Width = span(d.origin.X, ev.X)
		a.Y, a.Height = span(d.origin.Y, ev.Y)
		d.provisional = a
	case annotation.Shape:
		if !d.moved {
			return
		}
		switch a.ShapeType {
		case annotation.ShapeCircle, annotation.ShapeStar:
			a.Radius = math.Max(math.Abs(dx), math.Abs(dy)) / 2
			a.X, a.Y = math.Min(d.origin.X, ev.X), math.Min(d.origin.Y, ev.Y)
		default:
			a.X, a.Width = span(d.origin.X, ev.X)
			a.Y, a.Height = span(d.origin.Y, ev.Y)
		}
		d.provisional = a
	case annotation.Arrow:
		a.EndX, a.EndY = ev.X, ev.Y
		d.provisional = a
	case annotation.Drawing:
		last := a.Points[len(a.Points)-1]
		if last.X != ev.X || last.Y != ev.Y {
			pts := make([]annotation.Point, len(a.Points), len(a.Points)+1)
			copy(pts, a.Points)
			a.Points = append(pts, annotation.Point{X: ev.X, Y: ev.Y})
		}
		d.provisional = a
	}
}

func span(from, to float64) (start, length float64) {
	return math.Min(from, to), math.Abs(to - from)
}

func degenerate(a annotation.Annotation) bool {
	switch v := a.(type) {
	case annotation.Highlight:
		return v.Width == 0 || v.Height == 0
	case annotation.Arrow:
		return v.StartX == v.EndX && v.StartY == v.EndY
	}
	return false
}

func finite(ev Event) error {
	if math.IsNaN(ev.X) || math.IsNaN(ev.Y) || math.IsInf(ev.X, 0) || math.IsInf(ev.Y, 0) {
		return editor.ErrInvalidGeometry
	}
	return nil
}
