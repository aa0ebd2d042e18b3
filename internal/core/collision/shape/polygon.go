package shape

import "math"

type polar struct {
	dist  float64
	angle float64 // degrees
}

// Polygon is a convex polygon rotated about its flip-adjusted origin.
// Each vertex keeps its original distance and angle from the origin, so
// repeated rotations never accumulate rounding error.
type Polygon struct {
	base
	local    []polar
	rotation float64
	cx, cy   int
	points   []Point
}

var _ Shape = (*Polygon)(nil)

// NewPolygon creates a polygon centered at offset (offX, offY). Vertices are
// relative to that center and must be ordered around the boundary.
func NewPolygon(offX, offY int, vertices ...Point) *Polygon {
	p := &Polygon{
		local:  make([]polar, len(vertices)),
		points: make([]Point, len(vertices)),
	}
	for i, v := range vertices {
		p.local[i] = polar{
			dist:  math.Hypot(float64(v.X), float64(v.Y)),
			angle: math.Atan2(float64(v.Y), float64(v.X)) * 180 / math.Pi,
		}
	}
	p.offX, p.offY = offX, offY
	p.update()
	return p
}

// NewTriangle is a three-vertex polygon.
func NewTriangle(offX, offY int, a, b, c Point) *Polygon {
	return NewPolygon(offX, offY, a, b, c)
}

func (p *Polygon) Kind() Kind { return KindPolygon }

// Points returns the world-space vertices. The slice must not be modified.
func (p *Polygon) Points() []Point { return p.points }

// Rotation returns the current angle in degrees, within [0, 360).
func (p *Polygon) Rotation() float64 { return p.rotation }

// SetRotation sets the absolute rotation in degrees.
func (p *Polygon) SetRotation(deg float64) {
	p.rotation = normalizeAngle(deg)
	p.update()
}

// Rotate adds deg to the current rotation.
func (p *Polygon) Rotate(deg float64) {
	p.SetRotation(p.rotation + deg)
}

func (p *Polygon) SetAnchor(x, y int) {
	p.anchorX, p.anchorY = x, y
	p.update()
}

func (p *Polygon) SetOffset(x, y int) {
	p.offX, p.offY = x, y
	p.update()
}

func (p *Polygon) SetFlip(x, y bool) {
	p.flipX, p.flipY = x, y
	p.update()
}

func (p *Polygon) Clone() Shape {
	c := *p
	c.local = append([]polar(nil), p.local...)
	c.points = append([]Point(nil), p.points...)
	return &c
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func (p *Polygon) update() {
	p.cx, p.cy = p.origin()
	if len(p.points) == 0 {
		p.bounds = Rect{MinX: p.cx, MinY: p.cy, MaxX: p.cx, MaxY: p.cy}
		return
	}
	for i, v := range p.local {
		rad := (v.angle + p.rotation) * math.Pi / 180
		dx := round(v.dist * math.Cos(rad))
		dy := round(v.dist * math.Sin(rad))
		if p.flipX {
			dx = -dx
		}
		if p.flipY {
			dy = -dy
		}
		p.points[i] = Point{X: p.cx + dx, Y: p.cy + dy}
	}
	b := Rect{MinX: p.points[0].X, MinY: p.points[0].Y, MaxX: p.points[0].X, MaxY: p.points[0].Y}
	for _, pt := range p.points[1:] {
		b.MinX, b.MaxX = min(b.MinX, pt.X), max(b.MaxX, pt.X)
		b.MinY, b.MaxY = min(b.MinY, pt.Y), max(b.MaxY, pt.Y)
	}
	p.bounds = b
}

// ContainsPoint uses the convex edge-side test; points on an edge count.
func (p *Polygon) ContainsPoint(x, y int) bool {
	n := len(p.points)
	if n < 3 || !p.bounds.Contains(x, y) {
		return false
	}
	var pos, neg bool
	for i := 0; i < n; i++ {
		a, b := p.points[i], p.points[(i+1)%n]
		switch sign(cross(a.X, a.Y, b.X, b.Y, x, y)) {
		case 1:
			pos = true
		case -1:
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// crossesBoundary reports whether the segment touches any edge.
func (p *Polygon) crossesBoundary(x1, y1, x2, y2 int) bool {
	n := len(p.points)
	for i := 0; i < n; i++ {
		a, b := p.points[i], p.points[(i+1)%n]
		if SegmentsIntersect(a.X, a.Y, b.X, b.Y, x1, y1, x2, y2) {
			return true
		}
	}
	return false
}

func (p *Polygon) IntersectsLine(x1, y1, x2, y2 int) bool {
	if !p.bounds.Overlaps(RectFromLine(x1, y1, x2, y2)) {
		return false
	}
	if p.ContainsPoint(x1, y1) || p.ContainsPoint(x2, y2) {
		return true
	}
	return p.crossesBoundary(x1, y1, x2, y2)
}

func polygonRect(p *Polygon, r *Rectangle) bool {
	b := r.bounds
	if !p.bounds.Overlaps(b) {
		return false
	}
	for _, pt := range p.points {
		if b.Contains(pt.X, pt.Y) {
			return true
		}
	}
	if p.crossesBoundary(b.MinX, b.MinY, b.MaxX, b.MaxY) ||
		p.crossesBoundary(b.MaxX, b.MinY, b.MinX, b.MaxY) {
		return true
	}
	// rectangle nested inside the polygon
	return p.ContainsPoint(b.MinX, b.MinY)
}

// polygonPolygon tests each opposite-vertex diagonal of a against b's
// boundary, then vertex containment both ways. For convex polygons any
// overlap without a contained vertex crosses an inner diagonal.
func polygonPolygon(a, b *Polygon) bool {
	if !a.bounds.Overlaps(b.bounds) {
		return false
	}
	n := len(a.points)
	for i := 0; i < n; i++ {
		from, to := a.points[i], a.points[(i+n/2)%n]
		if b.crossesBoundary(from.X, from.Y, to.X, to.Y) {
			return true
		}
	}
	for _, pt := range b.points {
		if a.ContainsPoint(pt.X, pt.Y) {
			return true
		}
	}
	for _, pt := range a.points {
		if b.ContainsPoint(pt.X, pt.Y) {
			return true
		}
	}
	return false
}

func polygonCircle(p *Polygon, c *Circle) bool {
	if !p.bounds.Overlaps(c.bounds) {
		return false
	}
	if p.ContainsPoint(c.cx, c.cy) {
		return true
	}
	n := len(p.points)
	for i := 0; i < n; i++ {
		a, b := p.points[i], p.points[(i+1)%n]
		if c.IntersectsLine(a.X, a.Y, b.X, b.Y) {
			return true
		}
	}
	return false
}
