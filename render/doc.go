// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the host-facing surface of the glade renderer.
//
// A host application (for example a gogpu.App) owns the GPU device and
// the window surface; glade receives them. The host hands a
// DeviceHandle to New, which acquires the underlying HAL device and
// queue, creates the glyph and image atlases, and wires the primitive
// pipelines. Each frame the host builds a scene.Scene and calls
// Renderer.Render with the surface's texture view.
//
//	r, err := render.New(handle, render.DefaultConfig())
//	...
//	sc := scene.New()
//	sc.AddRect(...)
//	err = r.Render(sc, surfaceView, logicalW, logicalH, fbW, fbH)
package render
