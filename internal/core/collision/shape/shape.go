// Package shape holds the hit-shape primitives and their pairwise
// intersection tests.
//
// Every shape is anchored to an owner position and carries a flip-aware
// offset from that anchor. Bounds are recomputed synchronously by every
// mutator, so Bounds never lags behind the anchor.
package shape

import (
	"fmt"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
)

// Kind tags the closed set of shape variants.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindCircle
	KindPolygon
	KindPrecise

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	case KindPrecise:
		return "precise"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Shape is a geometric region anchored to an owner.
// The set of implementations is closed to this package.
type Shape interface {
	Kind() Kind
	Bounds() Rect

	ContainsPoint(x, y int) bool
	IntersectsLine(x1, y1, x2, y2 int) bool

	Anchor() (x, y int)
	SetAnchor(x, y int)
	Offset() (x, y int)
	SetOffset(x, y int)
	Flip() (x, y bool)
	SetFlip(x, y bool)

	// BoundTo lists the capabilities this shape can be found under.
	BoundTo() capability.Set
	// Targeting lists the capabilities this shape may test against.
	Targeting() capability.Set
	SetBoundTo(capability.Set)
	SetTargeting(capability.Set)

	// Clone returns an independent copy.
	Clone() Shape

	common() *base
}

type base struct {
	anchorX, anchorY int
	offX, offY       int
	flipX, flipY     bool

	boundTo   capability.Set
	targeting capability.Set

	bounds Rect
}

func (b *base) common() *base { return b }

func (b *base) Bounds() Rect                  { return b.bounds }
func (b *base) Anchor() (int, int)            { return b.anchorX, b.anchorY }
func (b *base) Offset() (int, int)            { return b.offX, b.offY }
func (b *base) Flip() (bool, bool)            { return b.flipX, b.flipY }
func (b *base) BoundTo() capability.Set       { return b.boundTo }
func (b *base) Targeting() capability.Set     { return b.targeting }
func (b *base) SetBoundTo(s capability.Set)   { b.boundTo = s }
func (b *base) SetTargeting(s capability.Set) { b.targeting = s }

// origin returns the flip-adjusted reference point: anchor plus offset,
// with the offset mirrored on flipped axes.
func (b *base) origin() (int, int) {
	x, y := b.anchorX+b.offX, b.anchorY+b.offY
	if b.flipX {
		x = b.anchorX - b.offX
	}
	if b.flipY {
		y = b.anchorY - b.offY
	}
	return x, y
}

// box returns the flip-adjusted bounds of a w x h box at the current offset.
// A flipped box is mirrored about the anchor column/row.
func (b *base) box(w, h int) Rect {
	minX, minY := b.anchorX+b.offX, b.anchorY+b.offY
	if b.flipX {
		minX = b.anchorX - b.offX - w + 1
	}
	if b.flipY {
		minY = b.anchorY - b.offY - h + 1
	}
	return RectWH(minX, minY, w, h)
}

// Eligible reports whether candidate may be hit by query for capability id:
// candidate must be bound to id and query must be targeting it.
func Eligible(query, candidate Shape, id capability.ID) bool {
	return candidate.BoundTo().Has(id) && query.Targeting().Has(id)
}

// At returns a copy of s re-anchored at (x, y).
func At(s Shape, x, y int) Shape {
	c := s.Clone()
	c.SetAnchor(x, y)
	return c
}
