// Package spatial is the primary broad phase: a hashed uniform-cell index
// over entry bounding boxes with capability-filtered narrow-phase queries.
package spatial

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/hitbox/internal/core/collision/capability"
	"github.com/zeusync/hitbox/internal/core/collision/shape"
	"github.com/zeusync/hitbox/pkg/generic"
)

// DefaultCellSize is used when NewIndex receives a non-positive size.
const DefaultCellSize = 64

var (
	ErrDuplicateEntry = errors.New("entry already indexed")
	ErrUnknownEntry   = errors.New("entry not indexed")
)

// Entry is anything the index can hold: a liveness flag, the capabilities
// it supports, and shapes whose union is Bounds.
type Entry interface {
	ID() uuid.UUID
	Active() bool
	Capabilities() capability.Set
	Shapes() []shape.Shape
	Bounds() shape.Rect
}

// Statistics provides information about index occupancy and traffic.
type Statistics struct {
	EntryCount uint64
	CellCount  uint64
	Queries    uint64
	Updates    uint64
}

type cellKey struct {
	X, Y int
}

type cellRange struct {
	minX, minY, maxX, maxY int
}

type record struct {
	entry  Entry
	bounds shape.Rect
	cells  cellRange
	stamp  uint64
	pos    int
}

// Index is not safe for concurrent mutation; it belongs to one simulation
// step at a time.
type Index struct {
	cellSize int
	cells    map[cellKey][]*record
	records  map[uuid.UUID]*record
	ordered  []*record

	stamp   uint64
	queries uint64
	updates uint64

	candidates *generic.Pool[*[]*record]
}

// NewIndex creates an empty index with square cells of cellSize pixels.
func NewIndex(cellSize int) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*record),
		records:  make(map[uuid.UUID]*record),
		candidates: generic.NewResetPool(
			func() *[]*record {
				s := make([]*record, 0, 32)
				return &s
			},
			func(s *[]*record) *[]*record {
				clear(*s)
				*s = (*s)[:0]
				return s
			},
		),
	}
}

func floorDiv(v, d int) int {
	q := v / d
	if v%d != 0 && v < 0 {
		q--
	}
	return q
}

func (i *Index) rangeOf(b shape.Rect) cellRange {
	return cellRange{
		minX: floorDiv(b.MinX, i.cellSize), minY: floorDiv(b.MinY, i.cellSize),
		maxX: floorDiv(b.MaxX, i.cellSize), maxY: floorDiv(b.MaxY, i.cellSize),
	}
}

func (i *Index) link(r *record) {
	for y := r.cells.minY; y <= r.cells.maxY; y++ {
		for x := r.cells.minX; x <= r.cells.maxX; x++ {
			k := cellKey{x, y}
			i.cells[k] = append(i.cells[k], r)
		}
	}
}

// unlink swap-removes r from every cell it occupies.
func (i *Index) unlink(r *record) {
	for y := r.cells.minY; y <= r.cells.maxY; y++ {
		for x := r.cells.minX; x <= r.cells.maxX; x++ {
			k := cellKey{x, y}
			bucket := i.cells[k]
			for j, other := range bucket {
				if other == r {
					last := len(bucket) - 1
					bucket[j] = bucket[last]
					bucket[last] = nil
					bucket = bucket[:last]
					break
				}
			}
			if len(bucket) == 0 {
				delete(i.cells, k)
			} else {
				i.cells[k] = bucket
			}
		}
	}
}

// Insert adds e under its current bounds.
func (i *Index) Insert(e Entry) error {
	if _, exists := i.records[e.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ID())
	}
	b := e.Bounds()
	r := &record{entry: e, bounds: b, cells: i.rangeOf(b)}
	r.pos = len(i.ordered)
	i.records[e.ID()] = r
	i.ordered = append(i.ordered, r)
	i.link(r)
	return nil
}

// Update re-reads e.Bounds and moves the entry between cells if needed.
func (i *Index) Update(e Entry) error {
	r, ok := i.records[e.ID()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, e.ID())
	}
	i.updates++
	b := e.Bounds()
	r.bounds = b
	cells := i.rangeOf(b)
	if cells == r.cells {
		return nil
	}
	i.unlink(r)
	r.cells = cells
	i.link(r)
	return nil
}

// Remove drops the entry with id. It reports whether anything was removed.
func (i *Index) Remove(id uuid.UUID) bool {
	r, ok := i.records[id]
	if !ok {
		return false
	}
	i.unlink(r)
	delete(i.records, id)
	last := len(i.ordered) - 1
	moved := i.ordered[last]
	i.ordered[r.pos] = moved
	moved.pos = r.pos
	i.ordered[last] = nil
	i.ordered = i.ordered[:last]
	return true
}

// Contains reports whether id is indexed.
func (i *Index) Contains(id uuid.UUID) bool {
	_, ok := i.records[id]
	return ok
}

// Bounds returns the bounds the index currently holds for id.
func (i *Index) Bounds(id uuid.UUID) (shape.Rect, bool) {
	r, ok := i.records[id]
	if !ok {
		return shape.Rect{}, false
	}
	return r.bounds, true
}

func (i *Index) Len() int { return len(i.records) }

// Each visits every entry until fn returns false.
func (i *Index) Each(fn func(Entry) bool) {
	for _, r := range i.ordered {
		if !fn(r.entry) {
			return
		}
	}
}

// Clear removes every entry.
func (i *Index) Clear() {
	i.cells = make(map[cellKey][]*record)
	i.records = make(map[uuid.UUID]*record)
	i.ordered = nil
}

func (i *Index) Stats() Statistics {
	return Statistics{
		EntryCount: uint64(len(i.records)),
		CellCount:  uint64(len(i.cells)),
		Queries:    i.queries,
		Updates:    i.updates,
	}
}

// gather collects every distinct record whose bounds overlap area into buf.
// Scanning finishes before any narrow-phase work, so narrow-phase callers
// never observe a bucket mid-iteration.
func (i *Index) gather(area shape.Rect, buf *[]*record) {
	i.queries++
	i.stamp++
	cr := i.rangeOf(area)
	span := (cr.maxX - cr.minX + 1) * (cr.maxY - cr.minY + 1)
	if span > len(i.records) {
		for _, r := range i.ordered {
			if r.bounds.Overlaps(area) {
				*buf = append(*buf, r)
			}
		}
		return
	}
	for y := cr.minY; y <= cr.maxY; y++ {
		for x := cr.minX; x <= cr.maxX; x++ {
			for _, r := range i.cells[cellKey{x, y}] {
				if r.stamp == i.stamp {
					continue
				}
				r.stamp = i.stamp
				if r.bounds.Overlaps(area) {
					*buf = append(*buf, r)
				}
			}
		}
	}
}
