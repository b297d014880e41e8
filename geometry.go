package glade

// Point is a position in logical pixels.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height pair in logical pixels.
type Size struct {
	Width, Height float32
}

// IsEmpty returns true if either dimension is zero or negative.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Bounds is an axis-aligned rectangle: origin at the top-left corner
// plus a size. Layout supplies resolved Bounds for every widget; the
// rendering core only reads them.
type Bounds struct {
	Origin Point
	Size   Size
}

// NewBounds creates a Bounds from origin (x, y) and dimensions (w, h).
func NewBounds(x, y, w, h float32) Bounds {
	return Bounds{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// Right returns the X coordinate of the right edge.
func (b Bounds) Right() float32 { return b.Origin.X + b.Size.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (b Bounds) Bottom() float32 { return b.Origin.Y + b.Size.Height }

// IsEmpty returns true if the bounds enclose no area.
func (b Bounds) IsEmpty() bool { return b.Size.IsEmpty() }

// Contains returns true if p lies inside the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Origin.X && p.X < b.Right() &&
		p.Y >= b.Origin.Y && p.Y < b.Bottom()
}

// Intersects returns true if b and other overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return !b.Intersect(other).IsEmpty()
}

// Intersect returns the overlapping region of b and other.
// A disjoint pair produces an empty Bounds with zero size, never a
// negative one: an empty intersection means fully clipped.
func (b Bounds) Intersect(other Bounds) Bounds {
	x0 := maxf(b.Origin.X, other.Origin.X)
	y0 := maxf(b.Origin.Y, other.Origin.Y)
	x1 := minf(b.Right(), other.Right())
	y1 := minf(b.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Bounds{Origin: Point{X: x0, Y: y0}}
	}
	return NewBounds(x0, y0, x1-x0, y1-y0)
}

// Union returns the smallest Bounds enclosing both b and other.
// Empty operands are ignored.
func (b Bounds) Union(other Bounds) Bounds {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	x0 := minf(b.Origin.X, other.Origin.X)
	y0 := minf(b.Origin.Y, other.Origin.Y)
	x1 := maxf(b.Right(), other.Right())
	y1 := maxf(b.Bottom(), other.Bottom())
	return NewBounds(x0, y0, x1-x0, y1-y0)
}

// Dilate returns the bounds expanded by amount on every side.
func (b Bounds) Dilate(amount float32) Bounds {
	return NewBounds(
		b.Origin.X-amount,
		b.Origin.Y-amount,
		b.Size.Width+2*amount,
		b.Size.Height+2*amount,
	)
}

// ContentMask is a clip region applied to primitives at scene insertion
// time: an axis-aligned rectangle with an optional corner radius.
// Fragments outside the mask are discarded in the fragment stage.
type ContentMask struct {
	Bounds       Bounds
	CornerRadius float32
}

// Intersect combines two content masks. The result covers only the area
// inside both. Corner radii do not compose analytically; the intersection
// keeps a radius only when one operand fully contains the other, matching
// how nested rounded clips behave in practice.
func (m ContentMask) Intersect(other ContentMask) ContentMask {
	inter := m.Bounds.Intersect(other.Bounds)
	radius := float32(0)
	switch {
	case inter == m.Bounds:
		radius = m.CornerRadius
	case inter == other.Bounds:
		radius = other.CornerRadius
	}
	return ContentMask{Bounds: inter, CornerRadius: radius}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
