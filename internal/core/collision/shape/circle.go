package shape

import "math"

// Circle is a disc centered on the flip-adjusted offset from its anchor.
type Circle struct {
	base
	radius int
	cx, cy int
}

var _ Shape = (*Circle)(nil)

// NewCircle creates a circle of the given radius centered at offset
// (offX, offY) from the anchor.
func NewCircle(offX, offY, radius int) *Circle {
	c := &Circle{radius: radius}
	c.offX, c.offY = offX, offY
	c.update()
	return c
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Radius() int { return c.radius }

// Center returns the world-space center.
func (c *Circle) Center() (int, int) { return c.cx, c.cy }

func (c *Circle) SetRadius(r int) {
	c.radius = r
	c.update()
}

func (c *Circle) SetAnchor(x, y int) {
	c.anchorX, c.anchorY = x, y
	c.update()
}

func (c *Circle) SetOffset(x, y int) {
	c.offX, c.offY = x, y
	c.update()
}

func (c *Circle) SetFlip(x, y bool) {
	c.flipX, c.flipY = x, y
	c.update()
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}

func (c *Circle) update() {
	c.cx, c.cy = c.origin()
	c.bounds = Rect{
		MinX: c.cx - c.radius, MinY: c.cy - c.radius,
		MaxX: c.cx + c.radius, MaxY: c.cy + c.radius,
	}
}

func (c *Circle) ContainsPoint(x, y int) bool {
	dx, dy := int64(x-c.cx), int64(y-c.cy)
	r := int64(c.radius)
	return dx*dx+dy*dy <= r*r
}

// IntersectsLine tests the segment against the diameter perpendicular to it.
// Any segment reaching into the disc without an endpoint inside must cross
// that diameter.
func (c *Circle) IntersectsLine(x1, y1, x2, y2 int) bool {
	if !c.bounds.Overlaps(RectFromLine(x1, y1, x2, y2)) {
		return false
	}
	if c.ContainsPoint(x1, y1) || c.ContainsPoint(x2, y2) {
		return true
	}
	dx, dy := float64(x2-x1), float64(y2-y1)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	px := round(-dy / length * float64(c.radius))
	py := round(dx / length * float64(c.radius))
	return SegmentsIntersect(c.cx-px, c.cy-py, c.cx+px, c.cy+py, x1, y1, x2, y2)
}

// circleCircle treats touching discs as intersecting.
func circleCircle(a, b *Circle) bool {
	dx, dy := int64(a.cx-b.cx), int64(a.cy-b.cy)
	reach := int64(a.radius + b.radius + 1)
	return dx*dx+dy*dy < reach*reach
}
