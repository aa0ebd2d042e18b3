// Package grid is the alternate loose/tight broad phase.
//
// The world is split into CellsWide x CellsHigh fixed cells. A member lives in
// the loose cell under its center; loose cells are created on first use and
// their bounds only ever grow. Every fixed cell overlapped by a loose cell's
// bounds holds a tight node pointing back at it, so a query only has to walk
// the tight lists of the fixed cells it touches.
package grid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/shape"
)

var (
	ErrDuplicateMember = errors.New("member already in grid")
	ErrUnknownMember   = errors.New("member not in grid")
)

type span struct {
	minX, minY, maxX, maxY int
}

type member struct {
	id     uuid.UUID
	bounds shape.Rect
	loose  *looseCell
	next   *member
}

type looseCell struct {
	index  int
	head   *member
	count  int
	bounds shape.Rect
	// tight is the fixed-cell range currently holding nodes for this cell;
	// valid only when linked is set.
	tight  span
	linked bool
	stamp  uint64
}

type tightNode struct {
	loose *looseCell
	next  *tightNode
}

// Grid is not safe for concurrent use.
type Grid struct {
	cellsWide, cellsHigh int
	cellSize             int

	loose   []*looseCell
	tight   []*tightNode
	members map[uuid.UUID]*member
	stamp   uint64
}

// New creates a grid of cellsWide x cellsHigh cells, each cellSize pixels
// square, covering [0, cellsWide*cellSize) x [0, cellsHigh*cellSize).
func New(cellsWide, cellsHigh, cellSize int) *Grid {
	n := cellsWide * cellsHigh
	return &Grid{
		cellsWide: cellsWide,
		cellsHigh: cellsHigh,
		cellSize:  cellSize,
		loose:     make([]*looseCell, n),
		tight:     make([]*tightNode, n),
		members:   make(map[uuid.UUID]*member),
	}
}

func (g *Grid) CellsWide() int { return g.cellsWide }
func (g *Grid) CellsHigh() int { return g.cellsHigh }
func (g *Grid) CellSize() int  { return g.cellSize }
func (g *Grid) Len() int       { return len(g.members) }

// cellOf maps a world coordinate to a fixed-cell column or row, clamped to
// [0, limit).
func (g *Grid) cellOf(v, limit int) int {
	c := v / g.cellSize
	if v < 0 {
		c = 0
	}
	return min(c, limit-1)
}

func (g *Grid) spanOf(r shape.Rect) span {
	return span{
		minX: g.cellOf(r.MinX, g.cellsWide), minY: g.cellOf(r.MinY, g.cellsHigh),
		maxX: g.cellOf(r.MaxX, g.cellsWide), maxY: g.cellOf(r.MaxY, g.cellsHigh),
	}
}

// Cells returns the fixed-cell indices overlapped by r, row-major.
func (g *Grid) Cells(r shape.Rect) []int {
	s := g.spanOf(r)
	out := make([]int, 0, (s.maxX-s.minX+1)*(s.maxY-s.minY+1))
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			out = append(out, y*g.cellsWide+x)
		}
	}
	return out
}

// looseFor returns the loose cell under the center of r, creating it on
// first use.
func (g *Grid) looseFor(r shape.Rect) *looseCell {
	cx, cy := r.Center()
	i := g.cellOf(cy, g.cellsHigh)*g.cellsWide + g.cellOf(cx, g.cellsWide)
	lc := g.loose[i]
	if lc == nil {
		lc = &looseCell{index: i}
		g.loose[i] = lc
	}
	return lc
}

// Insert adds a member with the given bounds.
func (g *Grid) Insert(id uuid.UUID, r shape.Rect) error {
	if _, exists := g.members[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMember, id)
	}
	m := &member{id: id, bounds: r}
	g.members[id] = m
	g.attach(m, g.looseFor(r))
	return nil
}

// Update moves a member to new bounds, migrating it between loose cells when
// its center crosses into another fixed cell.
func (g *Grid) Update(id uuid.UUID, r shape.Rect) error {
	m, ok := g.members[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, id)
	}
	m.bounds = r
	if lc := g.looseFor(r); lc != m.loose {
		g.detach(m)
		g.attach(m, lc)
		return nil
	}
	g.expand(m.loose, r)
	return nil
}

// Remove drops a member. The loose cell keeps its bounds until Shrink.
func (g *Grid) Remove(id uuid.UUID) bool {
	m, ok := g.members[id]
	if !ok {
		return false
	}
	g.detach(m)
	delete(g.members, id)
	return true
}

func (g *Grid) attach(m *member, lc *looseCell) {
	m.loose = lc
	m.next = lc.head
	lc.head = m
	lc.count++
	g.expand(lc, m.bounds)
}

// detach unlinks m from its loose cell by walking the member list.
func (g *Grid) detach(m *member) {
	lc := m.loose
	for p := &lc.head; *p != nil; p = &(*p).next {
		if *p == m {
			*p = m.next
			lc.count--
			break
		}
	}
	m.loose, m.next = nil, nil
}

func (g *Grid) expand(lc *looseCell, r shape.Rect) {
	if lc.linked || lc.count > 1 {
		lc.bounds = lc.bounds.Union(r)
	} else {
		lc.bounds = r
	}
	g.sync(lc)
}

// sync relinks tight nodes when the fixed-cell range under the loose
// bounds has changed.
func (g *Grid) sync(lc *looseCell) {
	s := g.spanOf(lc.bounds)
	if lc.linked && s == lc.tight {
		return
	}
	g.unlinkTight(lc)
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			i := y*g.cellsWide + x
			g.tight[i] = &tightNode{loose: lc, next: g.tight[i]}
		}
	}
	lc.tight = s
	lc.linked = true
}

func (g *Grid) unlinkTight(lc *looseCell) {
	if !lc.linked {
		return
	}
	s := lc.tight
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			i := y*g.cellsWide + x
			for p := &g.tight[i]; *p != nil; p = &(*p).next {
				if (*p).loose == lc {
					*p = (*p).next
					break
				}
			}
		}
	}
	lc.linked = false
}

// Shrink recomputes every loose cell's bounds from its current members.
// Empty loose cells are dropped along with their tight nodes.
func (g *Grid) Shrink() {
	for i, lc := range g.loose {
		if lc == nil {
			continue
		}
		if lc.head == nil {
			g.unlinkTight(lc)
			g.loose[i] = nil
			continue
		}
		b := lc.head.bounds
		for m := lc.head.next; m != nil; m = m.next {
			b = b.Union(m.bounds)
		}
		lc.bounds = b
		g.sync(lc)
	}
}

// Query visits every member whose bounds overlap r until visit returns
// false. Each member is visited at most once.
func (g *Grid) Query(r shape.Rect, visit func(id uuid.UUID, bounds shape.Rect) bool) {
	g.stamp++
	s := g.spanOf(r)
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			for n := g.tight[y*g.cellsWide+x]; n != nil; n = n.next {
				lc := n.loose
				if lc.stamp == g.stamp {
					continue
				}
				lc.stamp = g.stamp
				if !lc.bounds.Overlaps(r) {
					continue
				}
				for m := lc.head; m != nil; m = m.next {
					if m.bounds.Overlaps(r) && !visit(m.id, m.bounds) {
						return
					}
				}
			}
		}
	}
}

// LooseIndex returns the loose cell index holding id.
func (g *Grid) LooseIndex(id uuid.UUID) (int, bool) {
	m, ok := g.members[id]
	if !ok {
		return 0, false
	}
	return m.loose.index, true
}

// LooseBounds returns the current bounds of loose cell i. The index is not
// range checked.
func (g *Grid) LooseBounds(i int) (shape.Rect, bool) {
	lc := g.loose[i]
	if lc == nil {
		return shape.Rect{}, false
	}
	return lc.bounds, true
}

// EachLoose visits every live loose cell in index order.
func (g *Grid) EachLoose(fn func(index int, bounds shape.Rect)) {
	for i, lc := range g.loose {
		if lc != nil {
			fn(i, lc.bounds)
		}
	}
}

// TightCells returns, in row-major order, every fixed cell whose tight list
// references loose cell i. The index is not range checked.
func (g *Grid) TightCells(i int) []int {
	lc := g.loose[i]
	if lc == nil {
		return nil
	}
	var out []int
	for c, n := range g.tight {
		for ; n != nil; n = n.next {
			if n.loose == lc {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
