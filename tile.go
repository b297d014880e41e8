package glade

// AtlasTile is an allocated rectangular region within an atlas texture,
// in texel coordinates. Tiles are valid until the owning atlas is
// cleared; image tiles are therefore re-fetched every frame, while glyph
// tiles may be cached by callers for the lifetime of the atlas.
type AtlasTile struct {
	X, Y          int
	Width, Height int
}

// IsValid returns true if the tile has a positive area.
func (t AtlasTile) IsValid() bool { return t.Width > 0 && t.Height > 0 }

// HostTextureSource identifies an externally owned GPU texture view.
// hal.TextureView satisfies it. The host-texture pipeline keys its
// bind-group cache on NativeHandle, so a recreated texture (new handle)
// naturally misses the cache; views destroyed by the host must also be
// evicted explicitly via the pipeline's cache-invalidation calls.
type HostTextureSource interface {
	NativeHandle() uintptr
}
