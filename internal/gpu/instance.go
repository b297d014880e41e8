package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/glade"
	"github.com/gogpu/glade/scene"
)

// Per-instance float32 layout shared by every quad pipeline. Byte
// offsets match the Instance struct in the WGSL sources:
//
//	bounds      (vec4) @ 0   origin x, y, width, height
//	color/uv    (vec4) @ 16  premultiplied RGBA, or atlas tile (u, v, w, h)
//	aux color   (vec4) @ 32  border color (rect), text color (glyph)
//	params      (vec4) @ 48  two kind params, clip radius, depth
//	clip bounds (vec4) @ 64
//	transform   (vec4) @ 80  a, b, c, d
//	transform   (vec2) @ 96  tx, ty
//
// Total = 104 bytes per instance.
const instanceStride = 104

// pathVertexStride is the byte stride of the path pipeline, which steps
// per vertex instead of per instance:
//
//	position    (vec2) @ 0
//	color       (vec4) @ 8
//	depth, clip radius (vec2) @ 24
//	clip bounds (vec4) @ 32
const pathVertexStride = 48

// quadVertexCount is the number of vertices the vertex stage expands
// each instance into (two triangles, no index buffer).
const quadVertexCount = 6

// depthFor maps a frame-wide draw order to normalized device depth.
// Later orders get smaller depth so they pass a less-equal depth test
// against everything inserted before them, regardless of which
// pipeline's draw call rasterizes first.
func depthFor(order, total uint32) float32 {
	return 1 - float32(order+1)/float32(total+1)
}

// instanceBuf accumulates packed little-endian float32 instance data
// for one draw call. The backing slice is reused across frames.
type instanceBuf struct {
	data []byte
}

func (b *instanceBuf) reset() { b.data = b.data[:0] }

func (b *instanceBuf) bytes() []byte { return b.data }

func (b *instanceBuf) putF32(v float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	b.data = append(b.data, tmp[:]...)
}

func (b *instanceBuf) putVec4(x, y, z, w float32) {
	b.putF32(x)
	b.putF32(y)
	b.putF32(z)
	b.putF32(w)
}

// putColor writes a premultiplied RGBA color.
func (b *instanceBuf) putColor(c glade.Color) {
	p := c.Premultiply()
	b.putVec4(p.R, p.G, p.B, p.A)
}

func (b *instanceBuf) putBounds(r glade.Bounds) {
	b.putVec4(r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

// putPlacementTail writes the clip bounds and transform columns that
// close out every quad instance. A nil transform packs as identity.
func (b *instanceBuf) putPlacementTail(p scene.Placement) {
	b.putBounds(p.Clip.Bounds)
	if t := p.Transform; t != nil {
		b.putVec4(t.A, t.B, t.C, t.D)
		b.putF32(t.TX)
		b.putF32(t.TY)
	} else {
		b.putVec4(1, 0, 0, 1)
		b.putF32(0)
		b.putF32(0)
	}
}

// truncate limits an instance count to the pipeline maximum.
func truncate(n, maxInstances int) int {
	if maxInstances > 0 && n > maxInstances {
		return maxInstances
	}
	return n
}

// packRects packs rect instances. base offsets the layer-local draw
// order into the frame-wide order space; total is the frame order count.
func packRects(buf *instanceBuf, rects []scene.Rect, base, total uint32, maxInstances int) int {
	n := truncate(len(rects), maxInstances)
	for _, r := range rects[:n] {
		buf.putBounds(r.Bounds)
		buf.putColor(r.Background)
		buf.putColor(r.BorderColor)
		buf.putVec4(r.CornerRadius, r.BorderWidth, r.Clip.CornerRadius,
			depthFor(base+uint32(r.Order), total))
		buf.putPlacementTail(r.Placement)
	}
	return n
}

func packShadows(buf *instanceBuf, shadows []scene.Shadow, base, total uint32, maxInstances int) int {
	n := truncate(len(shadows), maxInstances)
	for _, s := range shadows[:n] {
		buf.putBounds(s.Bounds)
		buf.putColor(s.Color)
		buf.putVec4(0, 0, 0, 0)
		buf.putVec4(s.CornerRadius, s.Blur, s.Clip.CornerRadius,
			depthFor(base+uint32(s.Order), total))
		buf.putPlacementTail(s.Placement)
	}
	return n
}

// packGlyphs packs glyph instances. uvScale converts atlas texel
// coordinates to normalized UVs (1 / atlas size).
func packGlyphs(buf *instanceBuf, glyphs []scene.Glyph, uvScale float32, base, total uint32, maxInstances int) int {
	n := truncate(len(glyphs), maxInstances)
	if n < len(glyphs) {
		slogger().Warn("gpu: glyph instance overflow, truncating",
			"count", len(glyphs), "max", maxInstances)
	}
	for _, g := range glyphs[:n] {
		buf.putBounds(g.Bounds)
		buf.putVec4(float32(g.Tile.X)*uvScale, float32(g.Tile.Y)*uvScale,
			float32(g.Tile.Width)*uvScale, float32(g.Tile.Height)*uvScale)
		buf.putColor(g.Color)
		isColor := float32(0)
		if g.IsColor {
			isColor = 1
		}
		buf.putVec4(isColor, 0, g.Clip.CornerRadius,
			depthFor(base+uint32(g.Order), total))
		buf.putPlacementTail(g.Placement)
	}
	return n
}

func packImages(buf *instanceBuf, images []scene.Image, uvScale float32, base, total uint32, maxInstances int) int {
	n := truncate(len(images), maxInstances)
	for _, img := range images[:n] {
		opacity := img.Opacity
		if opacity <= 0 || opacity > 1 {
			opacity = 1
		}
		buf.putBounds(img.Bounds)
		buf.putVec4(float32(img.Tile.X)*uvScale, float32(img.Tile.Y)*uvScale,
			float32(img.Tile.Width)*uvScale, float32(img.Tile.Height)*uvScale)
		buf.putVec4(0, 0, 0, 0)
		buf.putVec4(img.CornerRadius, opacity, img.Clip.CornerRadius,
			depthFor(base+uint32(img.Order), total))
		buf.putPlacementTail(img.Placement)
	}
	return n
}

func packUnderlines(buf *instanceBuf, lines []scene.Underline, base, total uint32, maxInstances int) int {
	n := truncate(len(lines), maxInstances)
	for _, u := range lines[:n] {
		wavy := float32(0)
		if u.Wavy {
			wavy = 1
		}
		buf.putBounds(u.Bounds)
		buf.putColor(u.Color)
		buf.putVec4(0, 0, 0, 0)
		buf.putVec4(wavy, 0, u.Clip.CornerRadius,
			depthFor(base+uint32(u.Order), total))
		buf.putPlacementTail(u.Placement)
	}
	return n
}

func packHostTextures(buf *instanceBuf, hosts []scene.HostTexture, base, total uint32, maxInstances int) int {
	n := truncate(len(hosts), maxInstances)
	for _, h := range hosts[:n] {
		buf.putBounds(h.Bounds)
		buf.putVec4(0, 0, 1, 1)
		buf.putVec4(0, 0, 0, 0)
		buf.putVec4(0, 0, h.Clip.CornerRadius,
			depthFor(base+uint32(h.Order), total))
		buf.putPlacementTail(h.Placement)
	}
	return n
}

// packPaths packs path triangle lists as per-vertex data, applying the
// stamped transform on the CPU since path vertices are free-form rather
// than a unit quad. Returns the packed vertex count.
func packPaths(buf *instanceBuf, paths []scene.Path, base, total uint32, maxVertices int) int {
	packed := 0
	for _, p := range paths {
		// Triangle lists only; a trailing partial triangle is a caller
		// bug and is dropped with its path.
		count := len(p.Vertices) - len(p.Vertices)%3
		if count == 0 {
			continue
		}
		if maxVertices > 0 && packed+count > maxVertices {
			break
		}
		depth := depthFor(base+uint32(p.Order), total)
		c := p.Color.Premultiply()
		for _, v := range p.Vertices[:count] {
			pos := v
			if t := p.Transform; t != nil {
				pos = t.TransformPoint(v)
			}
			buf.putF32(pos.X)
			buf.putF32(pos.Y)
			buf.putVec4(c.R, c.G, c.B, c.A)
			buf.putF32(depth)
			buf.putF32(p.Clip.CornerRadius)
			buf.putBounds(p.Clip.Bounds)
		}
		packed += count
	}
	return packed
}
