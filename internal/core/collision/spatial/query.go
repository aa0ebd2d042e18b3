package spatial

import (
	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
)

// hitFunc confirms a candidate shape that already passed capability filters.
type hitFunc func(candidate shape.Shape) (bool, error)

// search runs the full pipeline: bounds range, activity, capability
// support, per-shape bound-to filter, then hit. With first set it returns
// on the first confirmed entry.
func (i *Index) search(area shape.Rect, want capability.ID, exclude uuid.UUID, first bool, hit hitFunc) ([]Entry, error) {
	buf := i.candidates.Get()
	defer i.candidates.Put(buf)
	i.gather(area, buf)

	var out []Entry
	for _, r := range *buf {
		e := r.entry
		if e.ID() == exclude || !e.Active() || !e.Capabilities().Includes(want) {
			continue
		}
		matched := false
		for _, cs := range e.Shapes() {
			if !cs.BoundTo().Has(want) || !cs.Bounds().Overlaps(area) {
				continue
			}
			ok, err := hit(cs)
			if err != nil {
				return out, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		out = append(out, e)
		if first {
			return out, nil
		}
	}
	return out, nil
}

func firstOf(es []Entry) (Entry, bool) {
	if len(es) == 0 {
		return nil, false
	}
	return es[0], true
}

// shapesHit confirms a candidate against every query shape targeting want.
func shapesHit(qs []shape.Shape, want capability.ID) hitFunc {
	return func(cs shape.Shape) (bool, error) {
		for _, q := range qs {
			if !q.Targeting().Has(want) || !q.Bounds().Overlaps(cs.Bounds()) {
				continue
			}
			ok, err := shape.Intersects(q, cs)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
}

func unionBounds(qs []shape.Shape) (shape.Rect, bool) {
	if len(qs) == 0 {
		return shape.Rect{}, false
	}
	area := qs[0].Bounds()
	for _, q := range qs[1:] {
		area = area.Union(q.Bounds())
	}
	return area, true
}

// FirstShapes returns the first active entry supporting want whose shapes
// overlap any of qs. The entry with id exclude is skipped, which lets a
// collider query around itself.
func (i *Index) FirstShapes(qs []shape.Shape, want capability.ID, exclude uuid.UUID) (Entry, bool, error) {
	area, ok := unionBounds(qs)
	if !ok {
		return nil, false, nil
	}
	es, err := i.search(area, want, exclude, true, shapesHit(qs, want))
	e, found := firstOf(es)
	return e, found, err
}

// AllShapes is FirstShapes returning every match.
func (i *Index) AllShapes(qs []shape.Shape, want capability.ID, exclude uuid.UUID) ([]Entry, error) {
	area, ok := unionBounds(qs)
	if !ok {
		return nil, nil
	}
	return i.search(area, want, exclude, false, shapesHit(qs, want))
}

// FirstShape is FirstShapes for a single query shape.
func (i *Index) FirstShape(q shape.Shape, want capability.ID, exclude uuid.UUID) (Entry, bool, error) {
	return i.FirstShapes([]shape.Shape{q}, want, exclude)
}

func (i *Index) AllShape(q shape.Shape, want capability.ID, exclude uuid.UUID) ([]Entry, error) {
	return i.AllShapes([]shape.Shape{q}, want, exclude)
}

// The coordinate queries below build their query shape locally per call and
// never fail: their shapes are always valid.

func (i *Index) pointSearch(x, y int, want capability.ID, first bool) []Entry {
	es, _ := i.search(shape.Rect{MinX: x, MinY: y, MaxX: x, MaxY: y}, want, uuid.Nil, first,
		func(cs shape.Shape) (bool, error) { return cs.ContainsPoint(x, y), nil })
	return es
}

// FirstAt returns the first eligible entry with a shape containing (x, y).
func (i *Index) FirstAt(x, y int, want capability.ID) (Entry, bool) {
	return firstOf(i.pointSearch(x, y, want, true))
}

func (i *Index) AllAt(x, y int, want capability.ID) []Entry {
	return i.pointSearch(x, y, want, false)
}

func (i *Index) localSearch(q shape.Shape, want capability.ID, first bool) []Entry {
	es, _ := i.search(q.Bounds(), want, uuid.Nil, first,
		func(cs shape.Shape) (bool, error) { return shape.MustIntersect(q, cs), nil })
	return es
}

// FirstInCircle returns the first eligible entry overlapping the disc.
func (i *Index) FirstInCircle(x, y, radius int, want capability.ID) (Entry, bool) {
	q := shape.NewCircle(0, 0, radius)
	q.SetAnchor(x, y)
	return firstOf(i.localSearch(q, want, true))
}

func (i *Index) AllInCircle(x, y, radius int, want capability.ID) []Entry {
	q := shape.NewCircle(0, 0, radius)
	q.SetAnchor(x, y)
	return i.localSearch(q, want, false)
}

// FirstInRect returns the first eligible entry overlapping r.
func (i *Index) FirstInRect(r shape.Rect, want capability.ID) (Entry, bool) {
	q := shape.NewRectangle(0, 0, r.Width(), r.Height())
	q.SetAnchor(r.MinX, r.MinY)
	return firstOf(i.localSearch(q, want, true))
}

func (i *Index) AllInRect(r shape.Rect, want capability.ID) []Entry {
	q := shape.NewRectangle(0, 0, r.Width(), r.Height())
	q.SetAnchor(r.MinX, r.MinY)
	return i.localSearch(q, want, false)
}

func (i *Index) lineSearch(x1, y1, x2, y2 int, want capability.ID, first bool) []Entry {
	es, _ := i.search(shape.RectFromLine(x1, y1, x2, y2), want, uuid.Nil, first,
		func(cs shape.Shape) (bool, error) { return cs.IntersectsLine(x1, y1, x2, y2), nil })
	return es
}

// FirstOnLine returns the first eligible entry touched by the segment.
func (i *Index) FirstOnLine(x1, y1, x2, y2 int, want capability.ID) (Entry, bool) {
	return firstOf(i.lineSearch(x1, y1, x2, y2, want, true))
}

func (i *Index) AllOnLine(x1, y1, x2, y2 int, want capability.ID) []Entry {
	return i.lineSearch(x1, y1, x2, y2, want, false)
}
