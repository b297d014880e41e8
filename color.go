package glade

import "image/color"

// Color is a straight-alpha RGBA color with components in [0, 1].
// Colors are premultiplied by alpha only at instance-packing time, just
// before upload, so scene-level color math stays in straight alpha.
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) Color { return Color{R: r, G: g, B: b, A: 1} }

// RGBA creates a color from RGBA components.
func RGBA(r, g, b, a float32) Color { return Color{R: r, G: g, B: b, A: a} }

// Transparent is the fully transparent color.
var Transparent = Color{}

// White is opaque white.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Black is opaque black.
var Black = Color{A: 1}

// Premultiply returns the color with RGB scaled by alpha.
// All color pipelines blend with (one, one-minus-src-alpha), so every
// CPU-side color write goes through Premultiply before upload.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Scale returns the color with alpha multiplied by opacity.
func (c Color) Scale(opacity float32) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: c.A * opacity}
}

// IsTransparent returns true if the color would contribute nothing.
func (c Color) IsTransparent() bool { return c.A <= 0 }

// Color converts to the standard color.Color interface.
func (c Color) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to Color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	// RGBA() returns alpha-premultiplied components; un-premultiply so
	// the straight-alpha invariant of Color holds.
	af := float32(a) / 65535
	return Color{
		R: float32(r) / float32(a),
		G: float32(g) / float32(a),
		B: float32(b) / float32(a),
		A: af,
	}
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
