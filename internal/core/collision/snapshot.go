package collision

import (
	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/shape"
)

// Snapshot is a render-only view of a world: bounding boxes, never geometry
// the renderer could feed back into collision.
type Snapshot struct {
	Tick       uint64             `json:"tick"`
	Colliders  []ColliderSnapshot `json:"colliders"`
	LooseCells []shape.Rect       `json:"loose_cells,omitempty"`
}

type ColliderSnapshot struct {
	ID     uuid.UUID       `json:"id"`
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Active bool            `json:"active"`
	Bounds shape.Rect      `json:"bounds"`
	Shapes []ShapeSnapshot `json:"shapes"`
}

type ShapeSnapshot struct {
	Kind   string        `json:"kind"`
	Bounds shape.Rect    `json:"bounds"`
	Points []shape.Point `json:"points,omitempty"`
}

// Snapshot captures the current state in index order.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Tick: w.tick}
	for _, c := range w.Colliders() {
		cs := ColliderSnapshot{
			ID:     c.id,
			X:      c.x,
			Y:      c.y,
			Active: c.Active(),
			Bounds: c.Bounds(),
			Shapes: make([]ShapeSnapshot, 0, len(c.shapes)),
		}
		for _, s := range c.shapes {
			ss := ShapeSnapshot{Kind: s.Kind().String(), Bounds: s.Bounds()}
			if p, ok := s.(*shape.Polygon); ok {
				ss.Points = append([]shape.Point(nil), p.Points()...)
			}
			cs.Shapes = append(cs.Shapes, ss)
		}
		snap.Colliders = append(snap.Colliders, cs)
	}
	if w.grid != nil {
		w.grid.EachLoose(func(_ int, bounds shape.Rect) {
			snap.LooseCells = append(snap.LooseCells, bounds)
		})
	}
	return snap
}
