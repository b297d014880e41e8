// Package glade provides the frame rendering core of a retained-mode,
// GPU-accelerated UI framework.
//
// # Overview
//
// glade collects draw primitives into a per-frame scene graph and renders
// them with instanced GPU pipelines over the gogpu/wgpu HAL. The widget
// tree, layout solver, windowing glue, and text shaper are external
// collaborators: layout supplies resolved bounds, the platform supplies a
// GPU device and queue, and the shaper supplies positioned glyphs.
//
// # Quick Start
//
//	sc := scene.New()
//	sc.AddRect(scene.Rect{
//	    Bounds:       glade.NewBounds(10, 10, 200, 100),
//	    Background:   glade.RGB(0.2, 0.4, 0.9),
//	    CornerRadius: 8,
//	})
//	renderer.Render(sc, targetView, logicalW, logicalH)
//
// # Architecture
//
// The library is organized into:
//   - Root: geometry, color, transforms, external contracts
//   - scene: per-frame primitive accumulation with clip/transform stacks
//   - atlas: glyph and image atlases over a row-packing allocator
//   - codec/png, codec/flate, codec/jpeg: bundled image decoders
//   - internal/gpu: per-primitive instanced pipelines and the renderer
//   - render: host device integration (gpucontext.DeviceProvider)
//
// # Coordinate System
//
// Logical pixels with origin (0,0) at top-left, X right, Y down. The
// renderer converts logical coordinates to clip space using a shared
// viewport uniform, so all pipelines agree on device-pixel scaling.
//
// # Frame Model
//
// One frame is single-threaded and synchronous: primitives are inserted
// into a Scene, atlases are populated during prepaint, then one
// Renderer.Render call batches instance data and submits one command
// buffer. No scene or atlas mutation may overlap a render pass.
package glade

// Version is the current version of the library.
const Version = "0.2.0"
