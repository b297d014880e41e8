// Package gpu implements the per-primitive render pipelines over the
// gogpu/wgpu HAL.
//
// Each primitive kind (rect, shadow, glyph, image, path, underline,
// host texture) owns one render pipeline and one WGSL shader. Quad
// kinds draw instanced: the CPU packs a fixed per-instance float32
// layout, uploads it in a single buffer write, and issues one
// Draw(6, n) per kind per layer; the vertex stage expands each
// instance into two triangles from a constant corner array, with no
// index buffer.
//
// Paint order within a layer is fixed (shadows, rects, glyphs, images,
// paths, underlines, host textures). Within and across those draw
// calls, insertion order is preserved by mapping each primitive's draw
// order to normalized device depth and depth-testing with less-equal,
// so all instances of one kind render in a single call while still
// respecting the order of primitives of other kinds.
//
// Edges are anti-aliased by evaluating signed distance fields in the
// fragment stage rather than by multisampling; shadow blur integrates
// the Gaussian kernel analytically with an error-function
// approximation. All pipelines blend premultiplied alpha.
package gpu
