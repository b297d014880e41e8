package text

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/glade"
)

// Rasterizer renders glyph outlines to coverage masks. It satisfies
// the glade.GlyphRasterizer contract through its Rasterize method and
// is the default glyph source for the glyph atlas.
//
// Color glyph tables (COLR/CBDT/sbix) are not rendered; such glyphs
// rasterize as missing.
type Rasterizer struct {
	store *FontStore

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewRasterizer creates a rasterizer resolving FontIDs through store.
func NewRasterizer(store *FontStore) *Rasterizer {
	return &Rasterizer{store: store}
}

// Func returns the rasterizer as a glade.GlyphRasterizer.
func (r *Rasterizer) Func() glade.GlyphRasterizer {
	return r.Rasterize
}

// Rasterize renders one glyph at the given pixel size, shifted right
// by the fractional pen offset subpixelX. It returns nil for unknown
// fonts, missing or color glyphs, and outlines with no coverage
// (whitespace).
func (r *Rasterizer) Rasterize(fontID glade.FontID, glyphID glade.GlyphID, fontSize float32, subpixelX float32) *glade.RasterizedGlyph {
	f, err := r.store.Font(fontID)
	if err != nil {
		return nil
	}
	sub := subpixelX - float32(math.Floor(float64(subpixelX)))

	// sfnt.Buffer is not concurrent-safe; glyph loads are serialized.
	// The atlas caches results, so contention here is a cold-path cost.
	r.mu.Lock()
	defer r.mu.Unlock()

	ppem := fixed.Int26_6(fontSize * 64)
	segments, err := f.sfnt.LoadGlyph(&r.buf, sfnt.GlyphIndex(glyphID), ppem, nil)
	if err != nil || len(segments) == 0 {
		return nil
	}

	// Outline bounds in 26.6, y-down with the origin on the baseline.
	minX, minY := fixed.Int26_6(1<<30), fixed.Int26_6(1<<30)
	maxX, maxY := fixed.Int26_6(-1<<30), fixed.Int26_6(-1<<30)
	for _, seg := range segments {
		for _, p := range seg.Args[:segmentArgs(seg.Op)] {
			if p.X < minX {
				minX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}

	// Shift the outline by the subpixel offset, then snap to the pixel
	// grid around it.
	fsub := fixed.Int26_6(sub * 64)
	x0 := (minX + fsub).Floor()
	y0 := minY.Floor()
	w := (maxX + fsub).Ceil() - x0
	h := maxY.Ceil() - y0
	if w <= 0 || h <= 0 {
		return nil
	}

	vr := vector.NewRasterizer(w, h)
	dx := sub - float32(x0)
	dy := -float32(y0)
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			vr.MoveTo(pt(seg.Args[0], dx, dy))
		case sfnt.SegmentOpLineTo:
			vr.LineTo(pt(seg.Args[0], dx, dy))
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0], dx, dy)
			x, y := pt(seg.Args[1], dx, dy)
			vr.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0], dx, dy)
			c2x, c2y := pt(seg.Args[1], dx, dy)
			x, y := pt(seg.Args[2], dx, dy)
			vr.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	vr.DrawOp = draw.Src
	vr.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	advance, err := f.sfnt.GlyphAdvance(&r.buf, sfnt.GlyphIndex(glyphID), ppem, font.HintingNone)
	if err != nil {
		advance = 0
	}

	return &glade.RasterizedGlyph{
		Width:  w,
		Height: h,
		// Bearings position the mask relative to the pen: x0 right of
		// the pen, y0 above the baseline (negative up in y-down space).
		BearingX: float32(x0),
		BearingY: float32(-y0),
		Advance:  fixedToFloat32(advance),
		Pixels:   mask.Pix,
	}
}

// pt converts a 26.6 outline point to mask-local float coordinates.
func pt(p fixed.Point26_6, dx, dy float32) (float32, float32) {
	return float32(p.X)/64 + dx, float32(p.Y)/64 + dy
}

// segmentArgs returns how many points of Args a segment op uses.
func segmentArgs(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
