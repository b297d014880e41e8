// Package atlas packs many small bitmaps (rasterized glyphs, decoded
// images) into large GPU textures so the glyph and image pipelines can
// draw from a single binding.
package atlas

import "github.com/gogpu/glade"

// Default atlas settings.
const (
	// DefaultSize is the default atlas dimension (2048x2048).
	DefaultSize = 2048

	// DefaultPadding is the spacing between allocations in texels.
	// Keeps bilinear filtering from bleeding neighboring tiles.
	DefaultPadding = 2
)

// Allocator hands out non-overlapping rectangular regions of a
// fixed-size 2D area using deterministic row packing: a cursor advances
// rightward along the current row; when an item would overflow the
// width, the cursor wraps to a new row below the tallest item placed so
// far. There is no compaction and no reuse of freed space; the only way
// to reclaim area is Clear.
type Allocator struct {
	width   int
	height  int
	padding int

	currentX  int
	currentY  int
	rowHeight int

	allocCount int
	usedArea   int
}

// NewAllocator creates an allocator over a width x height area.
// Non-positive dimensions fall back to DefaultSize; a negative padding
// falls back to DefaultPadding.
func NewAllocator(width, height, padding int) *Allocator {
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}
	if padding < 0 {
		padding = DefaultPadding
	}
	return &Allocator{width: width, height: height, padding: padding}
}

// Width returns the managed area width.
func (a *Allocator) Width() int { return a.width }

// Height returns the managed area height.
func (a *Allocator) Height() int { return a.height }

// Allocate finds space for a w x h rectangle. Returns the allocated
// tile and true, or a zero tile and false when the rectangle cannot be
// placed (either it exceeds the atlas dimensions or the remaining rows
// are exhausted).
func (a *Allocator) Allocate(w, h int) (glade.AtlasTile, bool) {
	if w <= 0 || h <= 0 || w > a.width || h > a.height {
		return glade.AtlasTile{}, false
	}

	// Wrap to a new row when the item would overflow the width.
	if a.currentX+w > a.width {
		a.currentY += a.rowHeight + a.padding
		a.currentX = 0
		a.rowHeight = 0
	}

	if a.currentY+h > a.height {
		return glade.AtlasTile{}, false
	}

	tile := glade.AtlasTile{X: a.currentX, Y: a.currentY, Width: w, Height: h}
	a.currentX += w + a.padding
	if h > a.rowHeight {
		a.rowHeight = h
	}
	a.allocCount++
	a.usedArea += w * h
	return tile, true
}

// Clear resets the cursor to the origin, making the entire area
// available again. Texel contents of the backing texture are not
// zeroed; stale texels are overwritten on the next upload or never
// sampled because cache keys change.
func (a *Allocator) Clear() {
	a.currentX = 0
	a.currentY = 0
	a.rowHeight = 0
	a.allocCount = 0
	a.usedArea = 0
}

// AllocCount returns the number of successful allocations since the
// last Clear.
func (a *Allocator) AllocCount() int { return a.allocCount }

// Utilization returns the fraction of the area covered by allocations,
// in [0, 1].
func (a *Allocator) Utilization() float64 {
	total := a.width * a.height
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}
