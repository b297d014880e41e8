package atlas

import "github.com/gogpu/glade"

// ImageAtlasConfig configures an ImageAtlas.
type ImageAtlasConfig struct {
	// Size is the atlas dimension in texels. Default: DefaultSize.
	Size int

	// Padding separates adjacent tiles. Default: DefaultPadding.
	Padding int

	// Policy selects overflow handling. The default, OverflowClearRetry,
	// clears the whole atlas and retries once: image tiles are looked
	// up fresh every frame, so wholesale invalidation is safe.
	Policy OverflowPolicy
}

// DefaultImageAtlasConfig returns the default configuration.
func DefaultImageAtlasConfig() ImageAtlasConfig {
	return ImageAtlasConfig{
		Size:    DefaultSize,
		Padding: DefaultPadding,
		Policy:  OverflowClearRetry,
	}
}

// ImageAtlas caches decoded RGBA images in a single texture, keyed by
// ImageID. Unlike the glyph atlas, tiles are not cached across frames
// by callers, so the atlas may clear itself wholesale on overflow.
//
// ImageAtlas is not safe for concurrent use; it is populated during
// prepaint, strictly before the image pipeline's render call.
type ImageAtlas struct {
	allocator *Allocator
	uploader  Uploader
	config    ImageAtlasConfig

	tiles map[glade.ImageID]glade.AtlasTile
}

// NewImageAtlas creates an image atlas over the given uploader.
func NewImageAtlas(config ImageAtlasConfig, uploader Uploader) *ImageAtlas {
	if config.Size <= 0 {
		config.Size = DefaultSize
	}
	if config.Padding < 0 {
		config.Padding = DefaultPadding
	}
	return &ImageAtlas{
		allocator: NewAllocator(config.Size, config.Size, config.Padding),
		uploader:  uploader,
		config:    config,
		tiles:     make(map[glade.ImageID]glade.AtlasTile),
	}
}

// GetOrInsert returns the atlas tile for the image, uploading it on
// first use. Returns a zero (invalid) tile when the image cannot be
// placed; callers skip drawing in that case.
func (a *ImageAtlas) GetOrInsert(id glade.ImageID, img *glade.DecodedImage) glade.AtlasTile {
	if tile, ok := a.tiles[id]; ok {
		return tile
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return glade.AtlasTile{}
	}

	tile, ok := a.allocator.Allocate(img.Width, img.Height)
	if !ok && a.config.Policy == OverflowClearRetry {
		a.Clear()
		tile, ok = a.allocator.Allocate(img.Width, img.Height)
	}
	if !ok {
		glade.Logger().Warn("atlas: image atlas full, dropping image",
			"image", id, "w", img.Width, "h", img.Height)
		return glade.AtlasTile{}
	}

	// Full RGBA rows, no re-striding: the decoded buffer is uploaded
	// directly with its natural pitch.
	a.uploader.Upload(tile, img.Data, img.Width*4)
	a.tiles[id] = tile
	return tile
}

// Clear evicts every cached image and resets the allocator. All
// previously returned tiles become invalid.
func (a *ImageAtlas) Clear() {
	a.allocator.Clear()
	a.tiles = make(map[glade.ImageID]glade.AtlasTile)
}

// Len returns the number of resident images.
func (a *ImageAtlas) Len() int { return len(a.tiles) }
