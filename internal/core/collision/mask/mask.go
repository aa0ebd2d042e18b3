// Package mask builds and caches per-pixel occupancy grids for sprite
// frames.
package mask

import (
	"image"
	"strings"
)

// DefaultAlphaThreshold marks a pixel occupied when its 8-bit alpha is at
// least this value.
const DefaultAlphaThreshold uint8 = 128

// Mask is an immutable-once-built boolean occupancy grid.
type Mask struct {
	width  int
	height int
	data   []bool
}

// New creates an empty w x h mask.
func New(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]bool, width*height),
	}
}

// FromImage marks every pixel whose alpha reaches threshold.
func FromImage(img image.Image, threshold uint8) *Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	m := New(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			m.data[y*w+x] = uint8(a>>8) >= threshold
		}
	}
	return m
}

// FromRows builds a mask from text rows where '#' or 'X' marks an occupied
// cell. Rows shorter than the longest one are padded with empty cells.
func FromRows(rows ...string) *Mask {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	m := New(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			m.data[y*w+x] = r[x] == '#' || r[x] == 'X'
		}
	}
	return m
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

// At returns the occupancy of cell (x, y). Coordinates are not checked;
// callers must stay inside the mask.
func (m *Mask) At(x, y int) bool {
	return m.data[y*m.width+x]
}

// Set is only meant for building masks before they are shared.
func (m *Mask) Set(x, y int, v bool) {
	m.data[y*m.width+x] = v
}

// Count returns the number of occupied cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// String renders the mask in the FromRows format.
func (m *Mask) String() string {
	var sb strings.Builder
	for y := 0; y < m.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < m.width; x++ {
			if m.At(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
