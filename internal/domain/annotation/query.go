package annotation

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Merge flattens several sets into one ordered by creation time.
// Annotations created at the same instant keep their input order.
func Merge(sets ...[]Annotation) []Annotation {
	var out []Annotation
	for _, set := range sets {
		out = append(out, set...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Header().CreatedAt.Before(out[j].Header().CreatedAt)
	})
	return out
}

// FilterByKind returns the annotations of kind k, in order
func FilterByKind(set []Annotation, k Kind) []Annotation {
	out := make([]Annotation, 0, len(set))
	for _, a := range set {
		if a.Kind() == k {
			out = append(out, a)
		}
	}
	return out
}

// FilterByPage returns the annotations attached to page
func FilterByPage(set []Annotation, page int) []Annotation {
	out := make([]Annotation, 0, len(set))
	for _, a := range set {
		if p := a.Header().Page; p != nil && *p == page {
			out = append(out, a)
		}
	}
	return out
}

// Rect is an axis-aligned bounding box
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width of the box
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height of the box
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the box covering a's geometry
func Bounds(a Annotation) Rect {
	xs, ys := corners(a)
	return Rect{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}
}

// Extent returns the box covering every annotation in set.
// ok is false for an empty set.
func Extent(set []Annotation) (r Rect, ok bool) {
	if len(set) == 0 {
		return Rect{}, false
	}
	var xs, ys []float64
	for _, a := range set {
		ax, ay := corners(a)
		xs = append(xs, ax...)
		ys = append(ys, ay...)
	}
	return Rect{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}, true
}

func corners(a Annotation) (xs, ys []float64) {
	switch v := a.(type) {
	case Text:
		return []float64{v.X, v.X + v.Width}, []float64{v.Y, v.Y + v.FontSize}
	case Highlight:
		return []float64{v.X, v.X + v.Width}, []float64{v.Y, v.Y + v.Height}
	case Shape:
		if v.ShapeType == ShapeCircle || v.ShapeType == ShapeStar {
			d := 2 * v.Radius
			return []float64{v.X, v.X + d}, []float64{v.Y, v.Y + d}
		}
		return []float64{v.X, v.X + v.Width}, []float64{v.Y, v.Y + v.Height}
	case Arrow:
		return []float64{v.StartX, v.EndX}, []float64{v.StartY, v.EndY}
	case Drawing:
		xs = make([]float64, len(v.Points))
		ys = make([]float64, len(v.Points))
		for i, p := range v.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		if len(xs) == 0 {
			return []float64{0}, []float64{0}
		}
		return xs, ys
	}
	return []float64{0}, []float64{0}
}
