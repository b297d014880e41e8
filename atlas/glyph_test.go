package atlas

import (
	"testing"

	"github.com/gogpu/glade"
)

// recordingUploader captures uploads for inspection.
type recordingUploader struct {
	uploads []recordedUpload
}

type recordedUpload struct {
	tile        glade.AtlasTile
	data        []byte
	bytesPerRow int
}

func (u *recordingUploader) Upload(tile glade.AtlasTile, data []byte, bytesPerRow int) {
	u.uploads = append(u.uploads, recordedUpload{tile: tile, data: data, bytesPerRow: bytesPerRow})
}

// maskRasterizer produces a w x h coverage mask filled with value and
// counts invocations.
func maskRasterizer(w, h int, value byte, calls *int) glade.GlyphRasterizer {
	return func(fontID glade.FontID, glyphID glade.GlyphID, fontSize, subpixelX float32) *glade.RasterizedGlyph {
		*calls++
		pixels := make([]byte, w*h)
		for i := range pixels {
			pixels[i] = value
		}
		return &glade.RasterizedGlyph{
			Width: w, Height: h,
			BearingX: 1, BearingY: -2, Advance: float32(w) + 1,
			Pixels: pixels,
		}
	}
}

func newTestGlyphAtlas(size int, r glade.GlyphRasterizer) (*GlyphAtlas, *recordingUploader) {
	up := &recordingUploader{}
	cfg := DefaultGlyphAtlasConfig()
	cfg.Size = size
	cfg.Rasterizer = r
	return NewGlyphAtlas(cfg, up), up
}

func TestGlyphCacheHit(t *testing.T) {
	calls := 0
	a, up := newTestGlyphAtlas(256, maskRasterizer(8, 8, 255, &calls))

	key := GlyphKey{FontID: 1, GlyphID: 42, FontSize: 14}
	first := a.GetOrInsert(key)
	if first == nil {
		t.Fatal("first GetOrInsert returned nil")
	}
	second := a.GetOrInsert(key)

	if second != first {
		t.Error("second call returned a different CachedGlyph")
	}
	if calls != 1 {
		t.Errorf("rasterizer invoked %d times, want 1", calls)
	}
	if len(up.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(up.uploads))
	}
	if first.BearingX != 1 || first.BearingY != -2 || first.Advance != 9 {
		t.Errorf("metrics not preserved: %+v", first)
	}
}

func TestGlyphDistinctKeys(t *testing.T) {
	calls := 0
	a, _ := newTestGlyphAtlas(256, maskRasterizer(8, 8, 255, &calls))

	a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 14})
	a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 16})
	a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 14, Subpixel: 2})

	if calls != 3 {
		t.Errorf("rasterizer invoked %d times, want 3 for 3 distinct keys", calls)
	}
	if a.Len() != 3 {
		t.Errorf("Len = %d, want 3", a.Len())
	}
}

func TestGlyphSubpixelBucketReachesRasterizer(t *testing.T) {
	var offsets []float32
	r := func(_ glade.FontID, _ glade.GlyphID, _ float32, subpixelX float32) *glade.RasterizedGlyph {
		offsets = append(offsets, subpixelX)
		pixels := make([]byte, 8*8)
		return &glade.RasterizedGlyph{Width: 8, Height: 8, Pixels: pixels}
	}
	a, _ := newTestGlyphAtlas(256, r)

	for _, bucket := range []uint8{0, 1, 3} {
		a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 5, FontSize: 14, Subpixel: bucket})
	}

	want := []float32{0, 0.25, 0.75}
	if len(offsets) != len(want) {
		t.Fatalf("rasterizer invoked %d times, want %d", len(offsets), len(want))
	}
	for i, w := range want {
		if offsets[i] != w {
			t.Errorf("bucket %d rasterized at offset %v, want %v", i, offsets[i], w)
		}
	}
}

func TestGlyphAlphaExpansion(t *testing.T) {
	calls := 0
	a, up := newTestGlyphAtlas(256, maskRasterizer(4, 4, 128, &calls))

	a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 12})

	if len(up.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(up.uploads))
	}
	u := up.uploads[0]

	// Row stride is padded to the 256-byte copy alignment.
	if u.bytesPerRow != 256 {
		t.Errorf("bytesPerRow = %d, want 256", u.bytesPerRow)
	}
	if len(u.data) != 256*4 {
		t.Errorf("buffer size = %d, want %d", len(u.data), 256*4)
	}

	// A coverage value expands to premultiplied white: all four
	// channels carry the alpha.
	for c := 0; c < 4; c++ {
		if u.data[c] != 128 {
			t.Errorf("channel %d = %d, want 128", c, u.data[c])
		}
	}
	// Padding bytes beyond the glyph row remain zero.
	if u.data[4*4] != 0 {
		t.Error("padding texels were written")
	}
}

func TestGlyphColorPassThrough(t *testing.T) {
	rgba := func(fontID glade.FontID, glyphID glade.GlyphID, fontSize, subpixelX float32) *glade.RasterizedGlyph {
		pixels := make([]byte, 4*4*4)
		for i := 0; i < len(pixels); i += 4 {
			pixels[i+0] = 200
			pixels[i+1] = 100
			pixels[i+2] = 50
			pixels[i+3] = 255
		}
		return &glade.RasterizedGlyph{Width: 4, Height: 4, Pixels: pixels, IsColor: true}
	}
	a, up := newTestGlyphAtlas(256, rgba)

	g := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 7, FontSize: 12})
	if g == nil || !g.IsColor {
		t.Fatal("color glyph not cached as color")
	}
	u := up.uploads[0]
	if u.data[0] != 200 || u.data[1] != 100 || u.data[2] != 50 || u.data[3] != 255 {
		t.Errorf("color texels altered: %v", u.data[:4])
	}
}

func TestGlyphTooSmallRejected(t *testing.T) {
	calls := 0
	a, _ := newTestGlyphAtlas(256, maskRasterizer(2, 2, 255, &calls))

	key := GlyphKey{FontID: 1, GlyphID: 1, FontSize: 1}
	if g := a.GetOrInsert(key); g != nil {
		t.Error("sub-minimum glyph was cached")
	}
	// The miss is remembered; the rasterizer is not re-invoked.
	a.GetOrInsert(key)
	if calls != 1 {
		t.Errorf("rasterizer invoked %d times for known-missing glyph, want 1", calls)
	}
}

func TestGlyphNilRasterizerResult(t *testing.T) {
	missing := func(glade.FontID, glade.GlyphID, float32, float32) *glade.RasterizedGlyph { return nil }
	a, _ := newTestGlyphAtlas(256, missing)

	if g := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 9, FontSize: 12}); g != nil {
		t.Error("missing glyph produced a cache entry")
	}
}

func TestGlyphAtlasFullDrops(t *testing.T) {
	calls := 0
	// 64x64 atlas, 40x40 glyphs: only one fits per row and only one row.
	a, _ := newTestGlyphAtlas(64, maskRasterizer(40, 40, 255, &calls))

	first := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 12})
	if first == nil {
		t.Fatal("first glyph failed")
	}
	second := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 2, FontSize: 12})
	if second != nil {
		t.Error("overflowing glyph was not dropped under DropLog policy")
	}
	// The first glyph's tile stays valid: no clear happened mid-frame.
	if got := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 12}); got != first {
		t.Error("existing glyph invalidated by overflow")
	}
}

func TestGlyphAtlasClearRetryPolicy(t *testing.T) {
	calls := 0
	up := &recordingUploader{}
	cfg := DefaultGlyphAtlasConfig()
	cfg.Size = 64
	cfg.Policy = OverflowClearRetry
	cfg.Rasterizer = maskRasterizer(40, 40, 255, &calls)
	a := NewGlyphAtlas(cfg, up)

	a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 1, FontSize: 12})
	second := a.GetOrInsert(GlyphKey{FontID: 1, GlyphID: 2, FontSize: 12})
	if second == nil {
		t.Fatal("ClearRetry policy failed to place glyph after clearing")
	}
	// The clear evicted the first glyph.
	if a.Len() != 1 {
		t.Errorf("Len after clear-retry = %d, want 1", a.Len())
	}
}

func TestGlyphClear(t *testing.T) {
	calls := 0
	a, _ := newTestGlyphAtlas(256, maskRasterizer(8, 8, 255, &calls))

	key := GlyphKey{FontID: 1, GlyphID: 1, FontSize: 12}
	a.GetOrInsert(key)
	a.Clear()

	if a.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", a.Len())
	}
	a.GetOrInsert(key)
	if calls != 2 {
		t.Errorf("rasterizer invoked %d times, want re-rasterization after Clear", calls)
	}
}
