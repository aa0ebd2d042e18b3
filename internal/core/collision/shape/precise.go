package shape

import (
	"math"

	"github.com/zeusync/hitbox/internal/core/collision/mask"
)

// Precise is a per-pixel occupancy shape backed by a sprite-frame mask.
// Flips mirror mask indices; the mask data itself is never rewritten.
type Precise struct {
	base
	mask *mask.Mask
}

var _ Shape = (*Precise)(nil)

// NewPrecise creates a mask shape whose top-left corner sits at offset
// (offX, offY) from the anchor.
func NewPrecise(offX, offY int, m *mask.Mask) *Precise {
	p := &Precise{mask: m}
	p.offX, p.offY = offX, offY
	p.update()
	return p
}

func (p *Precise) Kind() Kind { return KindPrecise }

func (p *Precise) Mask() *mask.Mask { return p.mask }

// SetMask swaps the occupancy data, typically on a sprite frame change.
func (p *Precise) SetMask(m *mask.Mask) {
	p.mask = m
	p.update()
}

func (p *Precise) SetAnchor(x, y int) {
	p.anchorX, p.anchorY = x, y
	p.update()
}

func (p *Precise) SetOffset(x, y int) {
	p.offX, p.offY = x, y
	p.update()
}

func (p *Precise) SetFlip(x, y bool) {
	p.flipX, p.flipY = x, y
	p.update()
}

// Clone shares the mask, which is immutable once built.
func (p *Precise) Clone() Shape {
	c := *p
	return &c
}

func (p *Precise) update() {
	p.bounds = p.box(p.mask.Width(), p.mask.Height())
}

// occupied looks up the mask cell under world point (x, y), which must lie
// inside the bounds.
func (p *Precise) occupied(x, y int) bool {
	lx, ly := x-p.bounds.MinX, y-p.bounds.MinY
	if p.flipX {
		lx = p.mask.Width() - 1 - lx
	}
	if p.flipY {
		ly = p.mask.Height() - 1 - ly
	}
	return p.mask.At(lx, ly)
}

func (p *Precise) ContainsPoint(x, y int) bool {
	return p.bounds.Contains(x, y) && p.occupied(x, y)
}

// IntersectsLine walks the segment cell by cell through the bounds.
func (p *Precise) IntersectsLine(x1, y1, x2, y2 int) bool {
	if !p.bounds.Overlaps(RectFromLine(x1, y1, x2, y2)) {
		return false
	}
	if p.ContainsPoint(x1, y1) || p.ContainsPoint(x2, y2) {
		return true
	}
	x1, y1 = p.reanchor(x1, y1, x2, y2)

	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	inside := false
	for {
		if p.bounds.Contains(x1, y1) {
			inside = true
			if p.occupied(x1, y1) {
				return true
			}
		} else if inside {
			return false
		}
		if x1 == x2 && y1 == y2 {
			return false
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

// reanchor moves (x1, y1) along the segment's angle to just short of where
// it first reaches the bounds, so the walk skips the empty approach.
func (p *Precise) reanchor(x1, y1, x2, y2 int) (int, int) {
	b := p.bounds
	if b.Contains(x1, y1) {
		return x1, y1
	}
	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	cos, sin := math.Cos(angle), math.Sin(angle)
	length := math.Hypot(float64(x2-x1), float64(y2-y1))

	need := 0.0
	switch {
	case x1 < b.MinX && cos > 0:
		need = math.Max(need, float64(b.MinX-x1)/cos)
	case x1 > b.MaxX && cos < 0:
		need = math.Max(need, float64(x1-b.MaxX)/-cos)
	case x1 < b.MinX || x1 > b.MaxX:
		return x2, y2
	}
	switch {
	case y1 < b.MinY && sin > 0:
		need = math.Max(need, float64(b.MinY-y1)/sin)
	case y1 > b.MaxY && sin < 0:
		need = math.Max(need, float64(y1-b.MaxY)/-sin)
	case y1 < b.MinY || y1 > b.MaxY:
		return x2, y2
	}

	need = math.Floor(need) - 1
	if need <= 0 {
		return x1, y1
	}
	if need >= length {
		return x2, y2
	}
	return x1 + round(cos*need), y1 + round(sin*need)
}

// preciseShape iterates only the shared sub-box of the two bounds.
func preciseShape(p *Precise, other Shape) bool {
	area, ok := p.bounds.Intersect(other.Bounds())
	if !ok {
		return false
	}
	q, otherPrecise := other.(*Precise)
	for y := area.MinY; y <= area.MaxY; y++ {
		for x := area.MinX; x <= area.MaxX; x++ {
			if !p.occupied(x, y) {
				continue
			}
			if otherPrecise {
				if q.occupied(x, y) {
					return true
				}
			} else if other.ContainsPoint(x, y) {
				return true
			}
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
