package shape

import "fmt"

type pairFunc func(a, b Shape) bool

// pairs is the pairwise intersection table. Precise always takes the
// receiver role, whichever side it arrives on.
var pairs = [kindCount][kindCount]pairFunc{
	KindRectangle: {
		KindRectangle: func(a, b Shape) bool { return rectRect(a.(*Rectangle), b.(*Rectangle)) },
		KindCircle:    func(a, b Shape) bool { return rectCircle(a.(*Rectangle), b.(*Circle)) },
		KindPolygon:   func(a, b Shape) bool { return polygonRect(b.(*Polygon), a.(*Rectangle)) },
		KindPrecise:   func(a, b Shape) bool { return preciseShape(b.(*Precise), a) },
	},
	KindCircle: {
		KindRectangle: func(a, b Shape) bool { return rectCircle(b.(*Rectangle), a.(*Circle)) },
		KindCircle:    func(a, b Shape) bool { return circleCircle(a.(*Circle), b.(*Circle)) },
		KindPolygon:   func(a, b Shape) bool { return polygonCircle(b.(*Polygon), a.(*Circle)) },
		KindPrecise:   func(a, b Shape) bool { return preciseShape(b.(*Precise), a) },
	},
	KindPolygon: {
		KindRectangle: func(a, b Shape) bool { return polygonRect(a.(*Polygon), b.(*Rectangle)) },
		KindCircle:    func(a, b Shape) bool { return polygonCircle(a.(*Polygon), b.(*Circle)) },
		KindPolygon:   func(a, b Shape) bool { return polygonPolygon(a.(*Polygon), b.(*Polygon)) },
		KindPrecise:   func(a, b Shape) bool { return preciseShape(b.(*Precise), a) },
	},
	KindPrecise: {
		KindRectangle: func(a, b Shape) bool { return preciseShape(a.(*Precise), b) },
		KindCircle:    func(a, b Shape) bool { return preciseShape(a.(*Precise), b) },
		KindPolygon:   func(a, b Shape) bool { return preciseShape(a.(*Precise), b) },
		KindPrecise:   func(a, b Shape) bool { return preciseShape(a.(*Precise), b) },
	},
}

// Validate reports ErrInvalidArgument for a shape the dispatcher cannot
// route: nil, an out-of-range Kind, or a Kind that disagrees with the
// concrete variant.
func Validate(s Shape) error {
	if s == nil {
		return fmt.Errorf("%w: <nil>", ErrInvalidArgument)
	}
	ok := false
	switch s.Kind() {
	case KindRectangle:
		_, ok = s.(*Rectangle)
	case KindCircle:
		_, ok = s.(*Circle)
	case KindPolygon:
		_, ok = s.(*Polygon)
	case KindPrecise:
		_, ok = s.(*Precise)
	}
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidArgument, s)
	}
	return nil
}

// Intersects reports whether a and b overlap.
func Intersects(a, b Shape) (bool, error) {
	if err := Validate(a); err != nil {
		return false, err
	}
	if err := Validate(b); err != nil {
		return false, err
	}
	return pairs[a.Kind()][b.Kind()](a, b), nil
}

// MustIntersect is Intersects for shapes already known to be valid, such as
// the ones built by query helpers. It panics on invalid input.
func MustIntersect(a, b Shape) bool {
	ok, err := Intersects(a, b)
	if err != nil {
		panic(err)
	}
	return ok
}
