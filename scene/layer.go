package scene

// Layer is one z-context of primitives. Each primitive kind gets its
// own bucket; the renderer paints buckets in the fixed order shadows,
// rects, glyphs, images, paths, underlines, host textures, so later
// buckets composite on top. Within a bucket, the per-primitive draw
// order maps to normalized depth and the depth test resolves occlusion.
type Layer struct {
	Shadows      []Shadow
	Rects        []Rect
	Glyphs       []Glyph
	Images       []Image
	Paths        []Path
	Underlines   []Underline
	HostTextures []HostTexture

	// nextOrder is the draw order assigned to the next insertion.
	nextOrder uint32
}

// newLayer creates an empty layer.
func newLayer() *Layer {
	return &Layer{}
}

// PrimitiveCount returns the total number of primitives in the layer.
func (l *Layer) PrimitiveCount() int {
	return len(l.Shadows) + len(l.Rects) + len(l.Glyphs) +
		len(l.Images) + len(l.Paths) + len(l.Underlines) +
		len(l.HostTextures)
}

// Count returns the number of primitives of one kind.
func (l *Layer) Count(kind PrimitiveKind) int {
	switch kind {
	case KindShadow:
		return len(l.Shadows)
	case KindRect:
		return len(l.Rects)
	case KindGlyph:
		return len(l.Glyphs)
	case KindImage:
		return len(l.Images)
	case KindPath:
		return len(l.Paths)
	case KindUnderline:
		return len(l.Underlines)
	case KindHostTexture:
		return len(l.HostTextures)
	default:
		return 0
	}
}

// MaxOrder returns the highest draw order assigned so far plus one.
// Pipelines scale per-instance order by this value when mapping to
// normalized device depth.
func (l *Layer) MaxOrder() uint32 {
	return l.nextOrder
}

// reset clears the layer for reuse without deallocating bucket storage.
func (l *Layer) reset() {
	l.Shadows = l.Shadows[:0]
	l.Rects = l.Rects[:0]
	l.Glyphs = l.Glyphs[:0]
	l.Images = l.Images[:0]
	l.Paths = l.Paths[:0]
	l.Underlines = l.Underlines[:0]
	l.HostTextures = l.HostTextures[:0]
	l.nextOrder = 0
}

// takeOrder returns the next draw order value and advances the counter.
func (l *Layer) takeOrder() uint32 {
	o := l.nextOrder
	l.nextOrder++
	return o
}
