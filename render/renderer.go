// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/glade"
	"github.com/gogpu/glade/atlas"
	"github.com/gogpu/glade/codec"
	"github.com/gogpu/glade/internal/gpu"
	"github.com/gogpu/glade/scene"
	"github.com/gogpu/wgpu/hal"
)

// Config configures a Renderer.
type Config struct {
	// GlyphAtlasSize and ImageAtlasSize are the atlas texture
	// dimensions in texels. Default: atlas.DefaultSize.
	GlyphAtlasSize int
	ImageAtlasSize int

	// GlyphRasterizer produces glyph bitmaps on atlas miss. Hosts with
	// a platform text backend inject it here; text.NewRasterizer
	// provides the in-tree software implementation.
	GlyphRasterizer glade.GlyphRasterizer

	// ImageCacheCapacity bounds the decoded-image cache entry count.
	// Zero uses the cache default.
	ImageCacheCapacity int

	// MaxInstances caps each pipeline's instance count per draw call.
	MaxInstances int

	// ClearColor fills the target at the start of each frame.
	ClearColor glade.Color

	// ValidateShaders runs the embedded WGSL through naga at startup.
	ValidateShaders bool
}

// DefaultConfig returns the default configuration (without a glyph
// rasterizer, which the host must supply for text to render).
func DefaultConfig() Config {
	return Config{
		GlyphAtlasSize: atlas.DefaultSize,
		ImageAtlasSize: atlas.DefaultSize,
	}
}

// Renderer owns everything glade needs per device: the glyph and image
// atlases with their backing textures, the decoded-image cache, and the
// primitive pipelines. Frames are rendered from a scene.Scene into a
// host-owned texture view.
//
// Renderer follows the cooperative single-threaded frame model: all
// atlas population (glyphs via GlyphAtlas, images via LoadImage)
// happens during prepaint, strictly before Render.
type Renderer struct {
	device hal.Device
	queue  hal.Queue

	glyphTex *atlas.GPUTexture
	imageTex *atlas.GPUTexture

	glyphs *atlas.GlyphAtlas
	images *atlas.ImageAtlas

	library  *codec.Library
	renderer *gpu.Renderer
}

// New creates a renderer over the host's GPU device. The handle must
// expose HAL access (see DeviceHandle).
func New(handle DeviceHandle, config Config) (*Renderer, error) {
	device, queue, err := halFromHandle(handle)
	if err != nil {
		return nil, err
	}

	if config.GlyphAtlasSize <= 0 {
		config.GlyphAtlasSize = atlas.DefaultSize
	}
	if config.ImageAtlasSize <= 0 {
		config.ImageAtlasSize = atlas.DefaultSize
	}

	glyphTex, err := atlas.NewGPUTexture(device, queue, config.GlyphAtlasSize, "glade_glyph_atlas")
	if err != nil {
		return nil, err
	}
	imageTex, err := atlas.NewGPUTexture(device, queue, config.ImageAtlasSize, "glade_image_atlas")
	if err != nil {
		glyphTex.Destroy()
		return nil, err
	}

	glyphConfig := atlas.DefaultGlyphAtlasConfig()
	glyphConfig.Size = config.GlyphAtlasSize
	glyphConfig.Rasterizer = config.GlyphRasterizer

	imageConfig := atlas.DefaultImageAtlasConfig()
	imageConfig.Size = config.ImageAtlasSize

	renderer := gpu.NewRenderer(device, queue, gpu.RendererConfig{
		MaxInstances:    config.MaxInstances,
		ClearColor:      config.ClearColor,
		ValidateShaders: config.ValidateShaders,
	})
	renderer.SetGlyphAtlas(glyphTex.View(), config.GlyphAtlasSize)
	renderer.SetImageAtlas(imageTex.View(), config.ImageAtlasSize)

	return &Renderer{
		device:   device,
		queue:    queue,
		glyphTex: glyphTex,
		imageTex: imageTex,
		glyphs:   atlas.NewGlyphAtlas(glyphConfig, glyphTex),
		images:   atlas.NewImageAtlas(imageConfig, imageTex),
		library:  codec.NewLibrary(config.ImageCacheCapacity),
		renderer: renderer,
	}, nil
}

// GlyphAtlas returns the glyph atlas for prepaint population. Tiles
// returned by GetOrInsert feed scene.Glyph primitives.
func (r *Renderer) GlyphAtlas() *atlas.GlyphAtlas { return r.glyphs }

// ImageAtlas returns the image atlas.
func (r *Renderer) ImageAtlas() *atlas.ImageAtlas { return r.images }

// Images returns the decoded-image cache fronting the PNG and JPEG
// decoders.
func (r *Renderer) Images() *codec.Library { return r.library }

// LoadImage decodes an encoded PNG or JPEG (through the decoded-image
// cache), uploads it to the image atlas, and returns its id and tile
// for scene.Image primitives. An invalid tile means the atlas could
// not place the image this frame.
func (r *Renderer) LoadImage(data []byte) (glade.ImageID, glade.AtlasTile, error) {
	id, img, err := r.library.Load(data)
	if err != nil {
		return 0, glade.AtlasTile{}, err
	}
	return id, r.images.GetOrInsert(id, img), nil
}

// RemoveHostTexture evicts the cached bind group of one external
// texture view handle. Hosts call this when destroying or resizing a
// texture whose view glade has drawn.
func (r *Renderer) RemoveHostTexture(handle uintptr) {
	r.renderer.RemoveHostTexture(handle)
}

// ClearHostTextureCache evicts every cached host-texture bind group.
func (r *Renderer) ClearHostTextureCache() {
	r.renderer.ClearHostTextureCache()
}

// Render validates the scene's stack balance and draws it into target.
// logicalW and logicalH are the scene's logical dimensions; fbW and
// fbH are the framebuffer dimensions in device pixels. The scale
// factor between the two is applied uniformly in every pipeline's
// vertex stage.
func (r *Renderer) Render(sc *scene.Scene, target hal.TextureView, logicalW, logicalH float32, fbW, fbH uint32) error {
	if sc != nil {
		sc.Finish()
	}
	return r.renderer.Render(sc, target, logicalW, logicalH, fbW, fbH)
}

// Destroy releases every GPU resource: pipelines, atlases, and their
// backing textures. The renderer must not be used afterwards.
func (r *Renderer) Destroy() {
	r.renderer.Destroy()
	r.imageTex.Destroy()
	r.glyphTex.Destroy()
}
