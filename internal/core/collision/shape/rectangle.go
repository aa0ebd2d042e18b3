package shape

// Rectangle is an axis-aligned box. It is fully described by its bounds.
type Rectangle struct {
	base
	w, h int
}

var _ Shape = (*Rectangle)(nil)

// NewRectangle creates a w x h box whose top-left corner sits at offset
// (offX, offY) from the anchor.
func NewRectangle(offX, offY, w, h int) *Rectangle {
	r := &Rectangle{w: w, h: h}
	r.offX, r.offY = offX, offY
	r.update()
	return r
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Size() (w, h int) { return r.w, r.h }

func (r *Rectangle) Resize(w, h int) {
	r.w, r.h = w, h
	r.update()
}

func (r *Rectangle) SetAnchor(x, y int) {
	r.anchorX, r.anchorY = x, y
	r.update()
}

func (r *Rectangle) SetOffset(x, y int) {
	r.offX, r.offY = x, y
	r.update()
}

func (r *Rectangle) SetFlip(x, y bool) {
	r.flipX, r.flipY = x, y
	r.update()
}

func (r *Rectangle) Clone() Shape {
	c := *r
	return &c
}

func (r *Rectangle) update() {
	r.bounds = r.box(r.w, r.h)
}

func (r *Rectangle) ContainsPoint(x, y int) bool {
	return r.bounds.Contains(x, y)
}

func (r *Rectangle) IntersectsLine(x1, y1, x2, y2 int) bool {
	return rectLine(r.bounds, x1, y1, x2, y2)
}

func rectLine(b Rect, x1, y1, x2, y2 int) bool {
	if !b.Overlaps(RectFromLine(x1, y1, x2, y2)) {
		return false
	}
	if b.Contains(x1, y1) || b.Contains(x2, y2) {
		return true
	}
	for _, e := range rectEdges(b) {
		if SegmentsIntersect(e[0], e[1], e[2], e[3], x1, y1, x2, y2) {
			return true
		}
	}
	return false
}

func rectRect(a, b *Rectangle) bool {
	return a.bounds.Overlaps(b.bounds)
}

func rectCircle(r *Rectangle, c *Circle) bool {
	if !r.bounds.Overlaps(c.bounds) {
		return false
	}
	if r.bounds.Contains(c.cx, c.cy) {
		return true
	}
	for _, e := range rectEdges(r.bounds) {
		if c.IntersectsLine(e[0], e[1], e[2], e[3]) {
			return true
		}
	}
	return false
}
