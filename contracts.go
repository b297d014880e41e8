package glade

// External collaborator contracts. The rendering core consumes layout
// bounds, shaped glyphs, and rasterized glyph bitmaps through these
// narrow types; it never computes layout or shaping itself.

// RasterizedGlyph is the output of a glyph rasterizer: a bitmap plus
// the metrics needed to place it on a baseline.
type RasterizedGlyph struct {
	// Width and Height are the bitmap dimensions in device pixels.
	Width, Height int

	// BearingX and BearingY position the bitmap relative to the pen
	// position on the baseline.
	BearingX, BearingY float32

	// Advance is the horizontal pen advance in device pixels.
	Advance float32

	// Pixels holds the bitmap. For coverage masks this is Width*Height
	// single-channel alpha bytes; for color glyphs (emoji) it is
	// Width*Height*4 premultiplied RGBA bytes.
	Pixels []byte

	// IsColor reports whether Pixels is pre-colored RGBA rather than a
	// coverage mask.
	IsColor bool
}

// GlyphRasterizer abstracts the platform text-rendering backend.
// subpixelX is the fractional horizontal pen offset in [0, 1); the
// glyph atlas buckets it so fractional positions get distinct rasters.
// It returns nil when the glyph cannot be rasterized; callers treat a
// nil result as a missing glyph, not an error.
type GlyphRasterizer func(fontID FontID, glyphID GlyphID, fontSize float32, subpixelX float32) *RasterizedGlyph

// ShapedGlyph is one positioned glyph within a shaped line, as supplied
// by the external text shaper.
type ShapedGlyph struct {
	FontID   FontID
	GlyphID  GlyphID
	Position Point
	Advance  float32
}

// DecodedImage is a decoded RGBA bitmap ready for atlas upload.
// Data is Width*Height*4 bytes in RGBA order. The alpha convention is
// premultiplied, matching the blend mode of every color pipeline.
type DecodedImage struct {
	Width  int
	Height int
	Data   []byte
}
