package annotation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalid reports an annotation that fails structural validation
	ErrInvalid = errors.New("invalid annotation")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that a carries an id, a known kind and a creation time,
// and that its kind-specific fields are within range.
func Validate(a Annotation) error {
	if a == nil {
		return fmt.Errorf("%w: nil", ErrInvalid)
	}
	if !a.Kind().Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, a.Kind())
	}
	meta := a.Header()
	if meta.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if meta.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing created time", ErrInvalid)
	}
	if err := checkFinite(a); err != nil {
		return err
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, a.Kind(), err)
	}
	return nil
}

func checkFinite(a Annotation) error {
	var coords []float64
	switch v := a.(type) {
	case Text:
		coords = []float64{v.X, v.Y, v.FontSize, v.Width}
	case Highlight:
		coords = []float64{v.X, v.Y, v.Width, v.Height, v.Opacity}
	case Shape:
		coords = []float64{v.X, v.Y, v.Width, v.Height, v.Radius, v.StrokeWidth}
	case Arrow:
		coords = []float64{v.StartX, v.StartY, v.EndX, v.EndY, v.StrokeWidth}
	case Drawing:
		coords = make([]float64, 0, 2*len(v.Points)+1)
		for _, p := range v.Points {
			coords = append(coords, p.X, p.Y)
		}
		coords = append(coords, v.StrokeWidth)
	}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: %s: non-finite coordinate", ErrInvalid, a.Kind())
		}
	}
	return nil
}
