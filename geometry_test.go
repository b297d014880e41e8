package glade

import "testing"

func TestBoundsIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Bounds
		want Bounds
	}{
		{
			name: "identical",
			a:    NewBounds(0, 0, 100, 100),
			b:    NewBounds(0, 0, 100, 100),
			want: NewBounds(0, 0, 100, 100),
		},
		{
			name: "partial overlap",
			a:    NewBounds(0, 0, 100, 100),
			b:    NewBounds(50, 50, 100, 100),
			want: NewBounds(50, 50, 50, 50),
		},
		{
			name: "contained",
			a:    NewBounds(0, 0, 100, 100),
			b:    NewBounds(25, 25, 10, 10),
			want: NewBounds(25, 25, 10, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
			// Intersection is commutative.
			if rev := tt.b.Intersect(tt.a); rev != got {
				t.Errorf("Intersect not commutative: %+v vs %+v", got, rev)
			}
		})
	}
}

func TestBoundsIntersectDisjoint(t *testing.T) {
	a := NewBounds(0, 0, 10, 10)
	b := NewBounds(100, 100, 10, 10)

	got := a.Intersect(b)
	if !got.IsEmpty() {
		t.Errorf("disjoint intersection should be empty, got %+v", got)
	}
	// Empty never means negative size.
	if got.Size.Width < 0 || got.Size.Height < 0 {
		t.Errorf("intersection produced negative size: %+v", got.Size)
	}
	if a.Intersects(b) {
		t.Error("Intersects() = true for disjoint bounds")
	}
}

func TestBoundsUnion(t *testing.T) {
	a := NewBounds(0, 0, 10, 10)
	b := NewBounds(20, 5, 10, 10)

	got := a.Union(b)
	want := NewBounds(0, 0, 30, 15)
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}

	// Union with an empty operand returns the other operand.
	if u := a.Union(Bounds{}); u != a {
		t.Errorf("Union with empty = %+v, want %+v", u, a)
	}
}

func TestBoundsContains(t *testing.T) {
	b := NewBounds(10, 10, 20, 20)

	if !b.Contains(Pt(10, 10)) {
		t.Error("top-left corner should be inside")
	}
	if b.Contains(Pt(30, 30)) {
		t.Error("bottom-right corner is exclusive")
	}
	if b.Contains(Pt(5, 15)) {
		t.Error("point left of bounds should be outside")
	}
}

func TestBoundsDilate(t *testing.T) {
	b := NewBounds(10, 10, 20, 20).Dilate(5)
	want := NewBounds(5, 5, 30, 30)
	if b != want {
		t.Errorf("Dilate(5) = %+v, want %+v", b, want)
	}
}

func TestContentMaskIntersect(t *testing.T) {
	outer := ContentMask{Bounds: NewBounds(0, 0, 200, 200), CornerRadius: 8}
	inner := ContentMask{Bounds: NewBounds(50, 50, 50, 50), CornerRadius: 4}

	got := outer.Intersect(inner)
	if got.Bounds != inner.Bounds {
		t.Errorf("intersection bounds = %+v, want %+v", got.Bounds, inner.Bounds)
	}
	// Inner mask is fully contained, so its radius survives.
	if got.CornerRadius != 4 {
		t.Errorf("corner radius = %v, want 4", got.CornerRadius)
	}

	// Partial overlap drops the radius: the rounded corners no longer
	// coincide with the clipped region's corners.
	partial := ContentMask{Bounds: NewBounds(100, 0, 200, 200), CornerRadius: 8}
	got = outer.Intersect(partial)
	if got.CornerRadius != 0 {
		t.Errorf("partial overlap radius = %v, want 0", got.CornerRadius)
	}
}
