package atlas

import "github.com/gogpu/glade"

// MinGlyphSize is the smallest rasterized dimension worth caching.
// Glyphs below this are invisible at any practical scale and are
// treated as missing.
const MinGlyphSize = 4

// GlyphKey uniquely identifies a rasterized glyph variant.
type GlyphKey struct {
	FontID   glade.FontID
	GlyphID  glade.GlyphID
	FontSize float32

	// Subpixel is the quarter-pixel horizontal offset bucket (0-3).
	// Glyphs rendered at fractional positions get distinct rasters so
	// hinting stays crisp.
	Subpixel uint8
}

// SubpixelOffset converts the bucket to the fractional pen offset the
// rasterizer renders at.
func (k GlyphKey) SubpixelOffset() float32 {
	return float32(k.Subpixel%4) * 0.25
}

// CachedGlyph is a resident glyph: its atlas tile plus placement
// metrics. Values are stable until the atlas is cleared.
type CachedGlyph struct {
	Tile     glade.AtlasTile
	BearingX float32
	BearingY float32
	Advance  float32
	IsColor  bool
}

// GlyphAtlasConfig configures a GlyphAtlas.
type GlyphAtlasConfig struct {
	// Size is the atlas dimension in texels. Default: DefaultSize.
	Size int

	// Padding separates adjacent tiles. Default: DefaultPadding.
	Padding int

	// Policy selects overflow handling. The default, OverflowDropLog,
	// never invalidates tiles mid-frame: glyph instances already queued
	// for this frame's draw keep referencing valid texels.
	Policy OverflowPolicy

	// Rasterizer produces glyph bitmaps on cache miss.
	Rasterizer glade.GlyphRasterizer
}

// DefaultGlyphAtlasConfig returns the default configuration (without a
// rasterizer, which the caller must supply).
func DefaultGlyphAtlasConfig() GlyphAtlasConfig {
	return GlyphAtlasConfig{
		Size:    DefaultSize,
		Padding: DefaultPadding,
		Policy:  OverflowDropLog,
	}
}

// GlyphAtlas caches rasterized glyphs in a single texture. Coverage
// masks are stored as premultiplied white RGBA so monochrome and color
// (emoji) glyphs share one atlas format; the glyph pipeline multiplies
// monochrome texels by the text color.
//
// GlyphAtlas is not safe for concurrent use; it is populated during
// prepaint, strictly before the glyph pipeline's render call in the
// same frame.
type GlyphAtlas struct {
	allocator *Allocator
	uploader  Uploader
	config    GlyphAtlasConfig

	cache map[GlyphKey]*CachedGlyph

	// misses records keys the rasterizer could not produce, so a glyph
	// missing from a font is not re-rasterized every frame. Allocation
	// failures are deliberately not recorded here: after a future Clear
	// the same key may succeed.
	misses map[GlyphKey]struct{}
}

// NewGlyphAtlas creates a glyph atlas over the given uploader.
func NewGlyphAtlas(config GlyphAtlasConfig, uploader Uploader) *GlyphAtlas {
	if config.Size <= 0 {
		config.Size = DefaultSize
	}
	if config.Padding < 0 {
		config.Padding = DefaultPadding
	}
	return &GlyphAtlas{
		allocator: NewAllocator(config.Size, config.Size, config.Padding),
		uploader:  uploader,
		config:    config,
		cache:     make(map[GlyphKey]*CachedGlyph),
		misses:    make(map[GlyphKey]struct{}),
	}
}

// GetOrInsert returns the cached glyph for key, rasterizing and
// uploading it on first use. Returns nil when the glyph cannot be
// rasterized or the atlas is full under the drop policy; a nil result
// renders as blank space, never an error.
func (a *GlyphAtlas) GetOrInsert(key GlyphKey) *CachedGlyph {
	if g, ok := a.cache[key]; ok {
		return g
	}
	if _, ok := a.misses[key]; ok {
		return nil
	}

	raster := a.rasterize(key)
	if raster == nil {
		a.misses[key] = struct{}{}
		return nil
	}

	tile, ok := a.allocator.Allocate(raster.Width, raster.Height)
	if !ok {
		switch a.config.Policy {
		case OverflowClearRetry:
			a.Clear()
			tile, ok = a.allocator.Allocate(raster.Width, raster.Height)
		default:
			glade.Logger().Warn("atlas: glyph atlas full, dropping glyph",
				"font", key.FontID, "glyph", key.GlyphID, "size", key.FontSize)
			return nil
		}
		if !ok {
			glade.Logger().Warn("atlas: glyph does not fit even in empty atlas",
				"w", raster.Width, "h", raster.Height)
			return nil
		}
	}

	a.upload(tile, raster)

	g := &CachedGlyph{
		Tile:     tile,
		BearingX: raster.BearingX,
		BearingY: raster.BearingY,
		Advance:  raster.Advance,
		IsColor:  raster.IsColor,
	}
	a.cache[key] = g
	return g
}

// rasterize invokes the injected rasterizer and validates the result.
func (a *GlyphAtlas) rasterize(key GlyphKey) *glade.RasterizedGlyph {
	if a.config.Rasterizer == nil {
		return nil
	}
	raster := a.config.Rasterizer(key.FontID, key.GlyphID, key.FontSize, key.SubpixelOffset())
	if raster == nil {
		return nil
	}
	if raster.Width < MinGlyphSize || raster.Height < MinGlyphSize {
		return nil
	}
	if raster.Width > a.config.Size || raster.Height > a.config.Size {
		return nil
	}
	return raster
}

// upload expands the bitmap to RGBA if needed, pads each row to the
// copy pitch alignment, and writes the texels.
func (a *GlyphAtlas) upload(tile glade.AtlasTile, raster *glade.RasterizedGlyph) {
	bytesPerRow := AlignRowBytes(tile.Width * 4)
	buf := make([]byte, bytesPerRow*tile.Height)

	if raster.IsColor {
		// Pre-colored RGBA rows, re-strided.
		for y := 0; y < tile.Height; y++ {
			src := raster.Pixels[y*tile.Width*4 : (y+1)*tile.Width*4]
			copy(buf[y*bytesPerRow:], src)
		}
	} else {
		// Coverage mask: expand each alpha byte to premultiplied white.
		for y := 0; y < tile.Height; y++ {
			row := buf[y*bytesPerRow:]
			for x := 0; x < tile.Width; x++ {
				alpha := raster.Pixels[y*tile.Width+x]
				row[x*4+0] = alpha
				row[x*4+1] = alpha
				row[x*4+2] = alpha
				row[x*4+3] = alpha
			}
		}
	}

	a.uploader.Upload(tile, buf, bytesPerRow)
}

// Clear evicts every cached glyph and resets the allocator. All
// previously returned CachedGlyph tiles become invalid.
func (a *GlyphAtlas) Clear() {
	a.allocator.Clear()
	a.cache = make(map[GlyphKey]*CachedGlyph)
	a.misses = make(map[GlyphKey]struct{})
}

// Len returns the number of resident glyphs.
func (a *GlyphAtlas) Len() int { return len(a.cache) }
