package glade

import "math"

// TransformationMatrix is a 2x3 affine transformation in row-major order:
//
//	| A  B  TX |
//	| C  D  TY |
//
// representing the transformation:
//
//	x' = A*x + B*y + TX
//	y' = C*x + D*y + TY
type TransformationMatrix struct {
	A, B, TX float32
	C, D, TY float32
}

// Identity returns the identity transformation.
func Identity() TransformationMatrix {
	return TransformationMatrix{A: 1, D: 1}
}

// Translation creates a translation by (x, y).
func Translation(x, y float32) TransformationMatrix {
	return TransformationMatrix{A: 1, D: 1, TX: x, TY: y}
}

// Scaling creates a scale by (x, y) about the origin.
func Scaling(x, y float32) TransformationMatrix {
	return TransformationMatrix{A: x, D: y}
}

// Rotation creates a counter-clockwise rotation by angle radians about
// the origin.
func Rotation(angle float32) TransformationMatrix {
	sin, cos := math.Sincos(float64(angle))
	return TransformationMatrix{
		A: float32(cos), B: float32(-sin),
		C: float32(sin), D: float32(cos),
	}
}

// IsIdentity returns true if the matrix is exactly the identity.
// Identity transforms are omitted from primitives entirely so the
// shaders skip the matrix multiply for the common case.
func (m TransformationMatrix) IsIdentity() bool {
	return m == Identity()
}

// Multiply composes two transforms (m * other): transforming a point
// by the result is equivalent to transforming by other, then by m.
func (m TransformationMatrix) Multiply(other TransformationMatrix) TransformationMatrix {
	return TransformationMatrix{
		A:  m.A*other.A + m.B*other.C,
		B:  m.A*other.B + m.B*other.D,
		TX: m.A*other.TX + m.B*other.TY + m.TX,
		C:  m.C*other.A + m.D*other.C,
		D:  m.C*other.B + m.D*other.D,
		TY: m.C*other.TX + m.D*other.TY + m.TY,
	}
}

// TransformPoint applies the transformation to a point.
func (m TransformationMatrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.TX,
		Y: m.C*p.X + m.D*p.Y + m.TY,
	}
}

// TransformBounds returns the axis-aligned bounding box of the four
// transformed corners of b. Used for culling transformed primitives
// against an axis-aligned clip.
func (m TransformationMatrix) TransformBounds(b Bounds) Bounds {
	corners := [4]Point{
		m.TransformPoint(b.Origin),
		m.TransformPoint(Point{X: b.Right(), Y: b.Origin.Y}),
		m.TransformPoint(Point{X: b.Origin.X, Y: b.Bottom()}),
		m.TransformPoint(Point{X: b.Right(), Y: b.Bottom()}),
	}
	x0, y0 := corners[0].X, corners[0].Y
	x1, y1 := x0, y0
	for _, c := range corners[1:] {
		x0 = minf(x0, c.X)
		y0 = minf(y0, c.Y)
		x1 = maxf(x1, c.X)
		y1 = maxf(y1, c.Y)
	}
	return NewBounds(x0, y0, x1-x0, y1-y0)
}
