package shape

import "math"

// Point is an integer world coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned box with inclusive bounds on both axes.
// A one-pixel box has MinX == MaxX.
type Rect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// RectWH builds a Rect from its top-left corner and size.
func RectWH(x, y, w, h int) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w - 1, MaxY: y + h - 1}
}

// RectFromLine returns the bounding box of a segment.
func RectFromLine(x1, y1, x2, y2 int) Rect {
	return Rect{
		MinX: min(x1, x2), MinY: min(y1, y2),
		MaxX: max(x1, x2), MaxY: max(y1, y2),
	}
}

func (r Rect) Width() int  { return r.MaxX - r.MinX + 1 }
func (r Rect) Height() int { return r.MaxY - r.MinY + 1 }

// Empty reports whether the box has no area.
func (r Rect) Empty() bool { return r.MaxX < r.MinX || r.MaxY < r.MinY }

// Overlaps reports whether the two boxes share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Contains reports whether (x, y) lies inside the box.
func (r Rect) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersect returns the shared sub-box, or false if the boxes are disjoint.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		MinX: max(r.MinX, o.MinX), MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX), MaxY: min(r.MaxY, o.MaxY),
	}
	return out, !out.Empty()
}

// Union returns the smallest box covering both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: min(r.MinX, o.MinX), MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX), MaxY: max(r.MaxY, o.MaxY),
	}
}

// Translate returns the box moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Center returns the integer midpoint.
func (r Rect) Center() (int, int) {
	return r.MinX + (r.MaxX-r.MinX)/2, r.MinY + (r.MaxY-r.MinY)/2
}

// cross returns the z component of (b-a) x (c-a).
func cross(ax, ay, bx, by, cx, cy int) int64 {
	return int64(bx-ax)*int64(cy-ay) - int64(by-ay)*int64(cx-ax)
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment assumes (px, py) is collinear with a-b.
func onSegment(ax, ay, bx, by, px, py int) bool {
	return px >= min(ax, bx) && px <= max(ax, bx) && py >= min(ay, by) && py <= max(ay, by)
}

// SegmentsIntersect reports whether segments p1-p2 and p3-p4 share a point,
// including touching endpoints and collinear overlap.
func SegmentsIntersect(x1, y1, x2, y2, x3, y3, x4, y4 int) bool {
	d1 := sign(cross(x3, y3, x4, y4, x1, y1))
	d2 := sign(cross(x3, y3, x4, y4, x2, y2))
	d3 := sign(cross(x1, y1, x2, y2, x3, y3))
	d4 := sign(cross(x1, y1, x2, y2, x4, y4))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	switch {
	case d1 == 0 && onSegment(x3, y3, x4, y4, x1, y1):
		return true
	case d2 == 0 && onSegment(x3, y3, x4, y4, x2, y2):
		return true
	case d3 == 0 && onSegment(x1, y1, x2, y2, x3, y3):
		return true
	case d4 == 0 && onSegment(x1, y1, x2, y2, x4, y4):
		return true
	}
	return false
}

// rectEdges returns the four edges of r as segments.
func rectEdges(r Rect) [4][4]int {
	return [4][4]int{
		{r.MinX, r.MinY, r.MaxX, r.MinY},
		{r.MaxX, r.MinY, r.MaxX, r.MaxY},
		{r.MaxX, r.MaxY, r.MinX, r.MaxY},
		{r.MinX, r.MaxY, r.MinX, r.MinY},
	}
}

func round(v float64) int { return int(math.Round(v)) }
