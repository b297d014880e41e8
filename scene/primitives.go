package scene

import (
	"github.com/gogpu/glade"
)

// PrimitiveKind identifies one of the fixed primitive families.
// Each kind has its own layer bucket and its own GPU pipeline, so adding
// a kind means adding a bucket, a case in Layer.Counts, and a pipeline;
// there is no dynamic dispatch to fall through silently.
type PrimitiveKind uint8

// Primitive kind constants, in paint order. Later kinds draw on top of
// earlier ones (painter's algorithm across kinds; the depth test orders
// instances within a kind).
const (
	KindShadow PrimitiveKind = iota
	KindRect
	KindGlyph
	KindImage
	KindPath
	KindUnderline
	KindHostTexture

	// KindCount is the number of primitive kinds.
	KindCount
)

// String returns a human-readable name for the kind.
func (k PrimitiveKind) String() string {
	switch k {
	case KindShadow:
		return "Shadow"
	case KindRect:
		return "Rect"
	case KindGlyph:
		return "Glyph"
	case KindImage:
		return "Image"
	case KindPath:
		return "Path"
	case KindUnderline:
		return "Underline"
	case KindHostTexture:
		return "HostTexture"
	default:
		return "Unknown"
	}
}

// Placement holds the fields the scene stamps onto every primitive at
// insertion time: the intersection of all active content masks, the
// composed transform (nil when identity, so the shaders skip the matrix
// multiply), and the stable draw order within the layer.
type Placement struct {
	Clip      glade.ContentMask
	Transform *glade.TransformationMatrix
	Order     glade.DrawOrder
}

// Rect is a filled, optionally bordered, optionally rounded rectangle.
type Rect struct {
	Bounds       glade.Bounds
	Background   glade.Color
	CornerRadius float32
	BorderWidth  float32
	BorderColor  glade.Color

	Placement
}

// Shadow is a blurred drop shadow cast by a rounded rectangle.
// Blur is the Gaussian standard deviation in logical pixels; the shadow
// pipeline integrates the kernel analytically, so no blur passes run.
type Shadow struct {
	Bounds       glade.Bounds
	CornerRadius float32
	Blur         float32
	Color        glade.Color

	Placement
}

// Glyph is one atlas-backed glyph quad. Tile must reference a region
// already uploaded to the glyph atlas during prepaint.
type Glyph struct {
	Bounds glade.Bounds
	Tile   glade.AtlasTile
	Color  glade.Color

	// IsColor marks pre-colored (emoji) glyphs; Color is ignored for
	// those and the atlas texel is used as-is.
	IsColor bool

	Placement
}

// Image is an atlas-backed image quad.
type Image struct {
	Bounds       glade.Bounds
	Tile         glade.AtlasTile
	CornerRadius float32
	Opacity      float32

	Placement
}

// Underline is a horizontal decoration line. The bounds height is the
// line thickness. Wavy selects the squiggly error-underline variant.
type Underline struct {
	Bounds glade.Bounds
	Color  glade.Color
	Wavy   bool

	Placement
}

// Path is a filled polygonal region given as a triangle list in screen
// space, three vertices per triangle.
type Path struct {
	Vertices []glade.Point
	Color    glade.Color

	Placement
}

// HostTexture draws an externally rendered GPU texture (for example a
// video frame or an embedded offscreen surface) as a quad.
type HostTexture struct {
	Bounds glade.Bounds
	Source glade.HostTextureSource

	Placement
}

// bounds helpers used by the scene's cull check.

func (p Rect) bounds() glade.Bounds      { return p.Bounds }
func (p Shadow) bounds() glade.Bounds    { return p.Bounds.Dilate(3 * p.Blur) }
func (p Glyph) bounds() glade.Bounds     { return p.Bounds }
func (p Image) bounds() glade.Bounds     { return p.Bounds }
func (p Underline) bounds() glade.Bounds { return p.Bounds }
func (p HostTexture) bounds() glade.Bounds {
	return p.Bounds
}

func (p Path) bounds() glade.Bounds {
	if len(p.Vertices) == 0 {
		return glade.Bounds{}
	}
	x0, y0 := p.Vertices[0].X, p.Vertices[0].Y
	x1, y1 := x0, y0
	for _, v := range p.Vertices[1:] {
		if v.X < x0 {
			x0 = v.X
		}
		if v.Y < y0 {
			y0 = v.Y
		}
		if v.X > x1 {
			x1 = v.X
		}
		if v.Y > y1 {
			y1 = v.Y
		}
	}
	return glade.NewBounds(x0, y0, x1-x0, y1-y0)
}
