package glade

import "testing"

func TestPremultiply(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want Color
	}{
		{"opaque unchanged", RGB(0.5, 0.25, 1), Color{R: 0.5, G: 0.25, B: 1, A: 1}},
		{"half alpha", RGBA(1, 0.5, 0.25, 0.5), Color{R: 0.5, G: 0.25, B: 0.125, A: 0.5}},
		{"transparent zeroes rgb", RGBA(1, 1, 1, 0), Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Premultiply()
			if got != tt.want {
				t.Errorf("Premultiply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPremultiplyExact(t *testing.T) {
	// The packed RGB must equal r*a, g*a, b*a exactly in float32, with
	// no additional rounding.
	c := RGBA(0.7, 0.3, 0.9, 0.6)
	got := c.Premultiply()
	if got.R != c.R*c.A || got.G != c.G*c.A || got.B != c.B*c.A {
		t.Errorf("premultiplied channels differ from direct product: %+v", got)
	}
}

func TestScale(t *testing.T) {
	c := RGBA(1, 1, 1, 0.8).Scale(0.5)
	if absf(c.A-0.4) > epsilon {
		t.Errorf("Scale(0.5) alpha = %v, want 0.4", c.A)
	}
	if c.R != 1 || c.G != 1 || c.B != 1 {
		t.Error("Scale must not touch RGB")
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	orig := RGBA(0.25, 0.5, 0.75, 1)
	back := FromColor(orig.Color())

	if absf(back.R-orig.R) > 0.01 || absf(back.G-orig.G) > 0.01 ||
		absf(back.B-orig.B) > 0.01 || absf(back.A-orig.A) > 0.01 {
		t.Errorf("round trip = %+v, want %+v", back, orig)
	}
}

func TestIsTransparent(t *testing.T) {
	if !Transparent.IsTransparent() {
		t.Error("Transparent.IsTransparent() = false")
	}
	if White.IsTransparent() {
		t.Error("White.IsTransparent() = true")
	}
}
