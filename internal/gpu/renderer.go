package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/glade"
	"github.com/gogpu/glade/scene"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Renderer errors.
var (
	// ErrNilScene is returned when Render is called with a nil scene.
	ErrNilScene = errors.New("gpu: scene is nil")

	// ErrNilTarget is returned when Render is called with a nil target view.
	ErrNilTarget = errors.New("gpu: target view is nil")

	// ErrFenceTimeout is returned when the frame fence does not signal
	// within the submit deadline.
	ErrFenceTimeout = errors.New("gpu: fence wait timed out")
)

// globalsSize is the byte size of the shared Globals uniform:
// viewport_size (vec2<f32>) + scale_factor (f32) + padding = 16 bytes.
const globalsSize = 16

// DefaultMaxInstances is the per-pipeline instance budget per layer.
// Overflow is truncated, not an error; layout is expected to stay well
// under this for any practical UI.
const DefaultMaxInstances = 4096

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// MaxInstances caps the instance count of one draw call.
	// Default: DefaultMaxInstances.
	MaxInstances int

	// ClearColor fills the target before the frame's first draw.
	ClearColor glade.Color

	// ValidateShaders runs every embedded shader through naga at
	// construction and logs failures, instead of waiting for the
	// driver to reject a pipeline mid-frame.
	ValidateShaders bool
}

// DefaultRendererConfig returns the default configuration.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		MaxInstances: DefaultMaxInstances,
	}
}

// Renderer draws a finished scene into a target texture view: one
// render pass per frame, one instanced draw per primitive kind per
// layer, in the fixed paint order shadows, rects, glyphs, images,
// paths, underlines, host textures.
//
// Renderer is single-threaded by contract, matching the cooperative
// frame model: populate atlases during prepaint, then call Render.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	config RendererConfig

	rect      *primitivePipeline
	shadow    *primitivePipeline
	glyph     *primitivePipeline
	image     *primitivePipeline
	path      *primitivePipeline
	underline *primitivePipeline
	host      *primitivePipeline

	sampler    hal.Sampler
	globalsBuf hal.Buffer

	// sharedBind carries only the globals uniform and is shared by the
	// rect, shadow, underline, and path pipelines, whose bind group
	// layouts are identical.
	sharedBind hal.BindGroup

	glyphView    hal.TextureView
	glyphUVScale float32
	glyphBind    hal.BindGroup

	imageView    hal.TextureView
	imageUVScale float32
	imageBind    hal.BindGroup

	hostCache *hostBindGroupCache

	depthTex  hal.Texture
	depthView hal.TextureView
	depthW    uint32
	depthH    uint32

	buf          instanceBuf
	frameBuffers []hal.Buffer
}

// NewRenderer creates a renderer over the given device and queue. GPU
// objects are created lazily on the first Render call.
func NewRenderer(device hal.Device, queue hal.Queue, config RendererConfig) *Renderer {
	if config.MaxInstances <= 0 {
		config.MaxInstances = DefaultMaxInstances
	}
	if config.ValidateShaders {
		if err := ValidateShaders(); err != nil {
			slogger().Warn("gpu: shader validation failed", "error", err)
		}
	}
	return &Renderer{
		device:    device,
		queue:     queue,
		config:    config,
		hostCache: newHostBindGroupCache(device),
	}
}

// SetGlyphAtlas binds the glyph atlas texture view. size is the atlas
// dimension in texels. Must be called before glyph primitives render.
func (r *Renderer) SetGlyphAtlas(view hal.TextureView, size int) {
	if r.glyphBind != nil {
		r.device.DestroyBindGroup(r.glyphBind)
		r.glyphBind = nil
	}
	r.glyphView = view
	r.glyphUVScale = 1 / float32(size)
}

// SetImageAtlas binds the image atlas texture view. size is the atlas
// dimension in texels. Must be called before image primitives render.
func (r *Renderer) SetImageAtlas(view hal.TextureView, size int) {
	if r.imageBind != nil {
		r.device.DestroyBindGroup(r.imageBind)
		r.imageBind = nil
	}
	r.imageView = view
	r.imageUVScale = 1 / float32(size)
}

// RemoveHostTexture evicts the cached bind group of one external view
// handle. Hosts call this when destroying or resizing a texture.
func (r *Renderer) RemoveHostTexture(handle uintptr) {
	r.hostCache.Remove(handle)
}

// ClearHostTextureCache evicts every cached host-texture bind group.
func (r *Renderer) ClearHostTextureCache() {
	r.hostCache.Clear()
}

// Render draws the scene into target. logicalW and logicalH are the
// scene's logical pixel dimensions; fbW and fbH are the framebuffer
// dimensions in device pixels, from which the scale factor is derived.
// The call submits one command buffer and waits for completion.
func (r *Renderer) Render(sc *scene.Scene, target hal.TextureView, logicalW, logicalH float32, fbW, fbH uint32) error {
	if sc == nil {
		return ErrNilScene
	}
	if target == nil {
		return ErrNilTarget
	}
	if fbW == 0 || fbH == 0 {
		return nil
	}

	if err := r.ensurePipelines(); err != nil {
		return err
	}
	if err := r.ensureDepthTexture(fbW, fbH); err != nil {
		return err
	}
	r.writeGlobals(logicalW, fbW, fbH)

	draws, err := r.buildFrame(sc)
	if err != nil {
		r.releaseFrameBuffers()
		return err
	}

	err = r.encodeSubmit(target, draws)
	r.releaseFrameBuffers()
	return err
}

// Destroy releases every GPU resource held by the renderer. The atlas
// texture views are owned by their atlases and are not destroyed here.
func (r *Renderer) Destroy() {
	r.hostCache.Clear()
	if r.glyphBind != nil {
		r.device.DestroyBindGroup(r.glyphBind)
		r.glyphBind = nil
	}
	if r.imageBind != nil {
		r.device.DestroyBindGroup(r.imageBind)
		r.imageBind = nil
	}
	if r.sharedBind != nil {
		r.device.DestroyBindGroup(r.sharedBind)
		r.sharedBind = nil
	}
	if r.globalsBuf != nil {
		r.device.DestroyBuffer(r.globalsBuf)
		r.globalsBuf = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.depthView != nil {
		r.device.DestroyTextureView(r.depthView)
		r.depthView = nil
	}
	if r.depthTex != nil {
		r.device.DestroyTexture(r.depthTex)
		r.depthTex = nil
	}
	for _, p := range []*primitivePipeline{r.rect, r.shadow, r.glyph, r.image, r.path, r.underline, r.host} {
		if p != nil {
			p.destroy()
		}
	}
	r.rect, r.shadow, r.glyph, r.image = nil, nil, nil, nil
	r.path, r.underline, r.host = nil, nil, nil
}

// ensurePipelines creates the pipelines, sampler, globals buffer, and
// shared bind group on first use.
func (r *Renderer) ensurePipelines() error {
	if r.rect != nil {
		return nil
	}

	specs := []struct {
		spec pipelineSpec
		dst  **primitivePipeline
	}{
		{pipelineSpec{label: "rect", source: rectShaderSource, vertex: instanceVertexLayout()}, &r.rect},
		{pipelineSpec{label: "shadow", source: shadowShaderSource, vertex: instanceVertexLayout()}, &r.shadow},
		{pipelineSpec{label: "glyph", source: glyphShaderSource, textured: true, vertex: instanceVertexLayout()}, &r.glyph},
		{pipelineSpec{label: "image", source: imageShaderSource, textured: true, vertex: instanceVertexLayout()}, &r.image},
		{pipelineSpec{label: "path", source: pathShaderSource, vertex: pathVertexLayout()}, &r.path},
		{pipelineSpec{label: "underline", source: underlineShaderSource, vertex: instanceVertexLayout()}, &r.underline},
		{pipelineSpec{label: "host_texture", source: hostTextureShaderSource, textured: true, vertex: instanceVertexLayout()}, &r.host},
	}
	for _, s := range specs {
		p, err := newPrimitivePipeline(r.device, s.spec)
		if err != nil {
			r.Destroy()
			return err
		}
		*s.dst = p
	}

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glade_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		r.Destroy()
		return fmt.Errorf("create sampler: %w", err)
	}
	r.sampler = sampler

	globalsBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glade_globals",
		Size:  globalsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.Destroy()
		return fmt.Errorf("create globals buffer: %w", err)
	}
	r.globalsBuf = globalsBuf

	sharedBind, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glade_globals_bind",
		Layout: r.rect.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: globalsBuf.NativeHandle(), Offset: 0, Size: globalsSize,
			}},
		},
	})
	if err != nil {
		r.Destroy()
		return fmt.Errorf("create globals bind group: %w", err)
	}
	r.sharedBind = sharedBind

	return nil
}

// ensureDepthTexture creates or recreates the depth buffer when the
// framebuffer size changes.
func (r *Renderer) ensureDepthTexture(w, h uint32) error {
	if r.depthW == w && r.depthH == h && r.depthTex != nil {
		return nil
	}
	if r.depthView != nil {
		r.device.DestroyTextureView(r.depthView)
		r.depthView = nil
	}
	if r.depthTex != nil {
		r.device.DestroyTexture(r.depthTex)
		r.depthTex = nil
	}

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glade_depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	r.depthTex = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "glade_depth_view",
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		r.depthTex = nil
		return fmt.Errorf("create depth view: %w", err)
	}
	r.depthView = view

	r.depthW = w
	r.depthH = h
	return nil
}

// writeGlobals uploads the per-frame uniform: framebuffer size in
// device pixels and the logical-to-device scale factor.
func (r *Renderer) writeGlobals(logicalW float32, fbW, fbH uint32) {
	scale := float32(1)
	if logicalW > 0 {
		scale = float32(fbW) / logicalW
	}

	var buf instanceBuf
	buf.putF32(float32(fbW))
	buf.putF32(float32(fbH))
	buf.putF32(scale)
	buf.putF32(0)
	r.queue.WriteBuffer(r.globalsBuf, 0, buf.bytes())
}

// frameDraw is one recorded draw call: pipeline, bind group, vertex
// buffer, and counts.
type frameDraw struct {
	pipeline      *primitivePipeline
	bind          hal.BindGroup
	buf           hal.Buffer
	vertexCount   uint32
	instanceCount uint32
	firstInstance uint32
}

// buildFrame packs every layer's primitives and uploads the per-frame
// buffers, producing the ordered draw list.
func (r *Renderer) buildFrame(sc *scene.Scene) ([]frameDraw, error) {
	layers := sc.Layers()

	// Draw orders are layer-local; offset them into one frame-wide
	// space so every later layer out-depths everything before it.
	total := uint32(0)
	for _, l := range layers {
		total += l.MaxOrder()
	}

	var draws []frameDraw
	base := uint32(0)
	for _, layer := range layers {
		layerDraws, err := r.buildLayer(layer, base, total)
		if err != nil {
			return nil, err
		}
		draws = append(draws, layerDraws...)
		base += layer.MaxOrder()
	}
	return draws, nil
}

// buildLayer packs one layer's buckets in paint order.
func (r *Renderer) buildLayer(layer *scene.Layer, base, total uint32) ([]frameDraw, error) {
	var draws []frameDraw
	maxInst := r.config.MaxInstances

	addQuads := func(label string, p *primitivePipeline, bind hal.BindGroup, count int) error {
		if count == 0 {
			return nil
		}
		buf, err := r.uploadVertexData(label, r.buf.bytes())
		if err != nil {
			return err
		}
		draws = append(draws, frameDraw{
			pipeline:      p,
			bind:          bind,
			buf:           buf,
			vertexCount:   quadVertexCount,
			instanceCount: uint32(count),
		})
		return nil
	}

	// Shadows.
	r.buf.reset()
	if err := addQuads("frame_shadows", r.shadow, r.sharedBind,
		packShadows(&r.buf, layer.Shadows, base, total, maxInst)); err != nil {
		return nil, err
	}

	// Rects.
	r.buf.reset()
	if err := addQuads("frame_rects", r.rect, r.sharedBind,
		packRects(&r.buf, layer.Rects, base, total, maxInst)); err != nil {
		return nil, err
	}

	// Glyphs.
	if len(layer.Glyphs) > 0 {
		bind, err := r.glyphBindGroup()
		if err != nil {
			return nil, err
		}
		if bind == nil {
			slogger().Warn("gpu: glyph primitives with no glyph atlas bound",
				"count", len(layer.Glyphs))
		} else {
			r.buf.reset()
			if err := addQuads("frame_glyphs", r.glyph, bind,
				packGlyphs(&r.buf, layer.Glyphs, r.glyphUVScale, base, total, maxInst)); err != nil {
				return nil, err
			}
		}
	}

	// Images.
	if len(layer.Images) > 0 {
		bind, err := r.imageBindGroup()
		if err != nil {
			return nil, err
		}
		if bind == nil {
			slogger().Warn("gpu: image primitives with no image atlas bound",
				"count", len(layer.Images))
		} else {
			r.buf.reset()
			if err := addQuads("frame_images", r.image, bind,
				packImages(&r.buf, layer.Images, r.imageUVScale, base, total, maxInst)); err != nil {
				return nil, err
			}
		}
	}

	// Paths (per-vertex, not instanced).
	if len(layer.Paths) > 0 {
		r.buf.reset()
		vertexCount := packPaths(&r.buf, layer.Paths, base, total, maxInst*quadVertexCount)
		if vertexCount > 0 {
			buf, err := r.uploadVertexData("frame_paths", r.buf.bytes())
			if err != nil {
				return nil, err
			}
			draws = append(draws, frameDraw{
				pipeline:      r.path,
				bind:          r.sharedBind,
				buf:           buf,
				vertexCount:   uint32(vertexCount),
				instanceCount: 1,
			})
		}
	}

	// Underlines.
	r.buf.reset()
	if err := addQuads("frame_underlines", r.underline, r.sharedBind,
		packUnderlines(&r.buf, layer.Underlines, base, total, maxInst)); err != nil {
		return nil, err
	}

	// Host textures: one shared instance buffer, one draw per instance
	// since each binds its own texture view.
	if len(layer.HostTextures) > 0 {
		r.buf.reset()
		n := packHostTextures(&r.buf, layer.HostTextures, base, total, maxInst)
		if n > 0 {
			buf, err := r.uploadVertexData("frame_host_textures", r.buf.bytes())
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				bind, err := r.hostCache.groupFor(layer.HostTextures[i].Source,
					r.host.bindLayout, r.globalsBuf, globalsSize, r.sampler)
				if err != nil {
					return nil, err
				}
				draws = append(draws, frameDraw{
					pipeline:      r.host,
					bind:          bind,
					buf:           buf,
					vertexCount:   quadVertexCount,
					instanceCount: 1,
					firstInstance: uint32(i),
				})
			}
		}
	}

	return draws, nil
}

// glyphBindGroup lazily creates the glyph atlas bind group. Returns
// nil without error when no atlas view is bound.
func (r *Renderer) glyphBindGroup() (hal.BindGroup, error) {
	if r.glyphBind != nil || r.glyphView == nil {
		return r.glyphBind, nil
	}
	bind, err := r.atlasBindGroup("glade_glyph_atlas_bind", r.glyph.bindLayout, r.glyphView)
	if err != nil {
		return nil, err
	}
	r.glyphBind = bind
	return bind, nil
}

// imageBindGroup lazily creates the image atlas bind group.
func (r *Renderer) imageBindGroup() (hal.BindGroup, error) {
	if r.imageBind != nil || r.imageView == nil {
		return r.imageBind, nil
	}
	bind, err := r.atlasBindGroup("glade_image_atlas_bind", r.image.bindLayout, r.imageView)
	if err != nil {
		return nil, err
	}
	r.imageBind = bind
	return bind, nil
}

func (r *Renderer) atlasBindGroup(label string, layout hal.BindGroupLayout, view hal.TextureView) (hal.BindGroup, error) {
	bind, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.globalsBuf.NativeHandle(), Offset: 0, Size: globalsSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: r.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return bind, nil
}

// uploadVertexData creates a per-frame vertex buffer and uploads data.
// The buffer is tracked for release after the frame's fence wait.
func (r *Renderer) uploadVertexData(label string, data []byte) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	r.frameBuffers = append(r.frameBuffers, buf)
	return buf, nil
}

func (r *Renderer) releaseFrameBuffers() {
	for _, buf := range r.frameBuffers {
		r.device.DestroyBuffer(buf)
	}
	r.frameBuffers = r.frameBuffers[:0]
}

// encodeSubmit records the frame's single render pass and submits it,
// waiting on a fence so per-frame buffers can be released on return.
func (r *Renderer) encodeSubmit(target hal.TextureView, draws []frameDraw) error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glade_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glade_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	clear := r.config.ClearColor.Premultiply()
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "glade_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(clear.R), G: float64(clear.G),
				B: float64(clear.B), A: float64(clear.A),
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              r.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})

	for _, d := range draws {
		rp.SetPipeline(d.pipeline.pipeline)
		rp.SetBindGroup(0, d.bind, nil)
		rp.SetVertexBuffer(0, d.buf, 0)
		rp.Draw(d.vertexCount, d.instanceCount, 0, d.firstInstance)
	}

	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	return fenceWaitErr(fenceOK, err)
}

// fenceWaitErr folds hal.Device.Wait's (ok, err) result into a single
// error. A false ok with a nil err means the deadline passed.
func fenceWaitErr(ok bool, err error) error {
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return ErrFenceTimeout
	}
	return nil
}
