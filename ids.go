package glade

// Branded numeric IDs. Each kind is a distinct type so a FontID can
// never be passed where a GlyphID is expected; storage stays a plain
// integer.

// FontID identifies a registered font. Font registration (byte blob to
// id) belongs to the external text shaper.
type FontID uint32

// GlyphID is a glyph index within a font.
type GlyphID uint32

// ImageID identifies a decoded image across frames. It keys the image
// atlas cache.
type ImageID uint64

// RenderLayerID identifies a scene layer within a frame.
type RenderLayerID uint32

// DrawOrder is the stable z-ordering of a primitive within a layer.
// Later-inserted primitives receive higher values and occlude earlier
// ones of the same kind via the depth test.
type DrawOrder uint32
