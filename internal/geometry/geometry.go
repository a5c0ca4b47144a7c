package geometry

import (
	"errors"
	"math"
)

// Corner indices within a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

var (
	// ErrDegenerateQuad is returned when the four corners cannot define a
	// perspective transform (coincident corners, collinear points, zero area).
	ErrDegenerateQuad = errors.New("degenerate quadrilateral")

	// ErrCornerOutOfBounds signals a corner outside the editable area. The
	// editor clamps drags, so this indicates a geometry/size mismatch upstream.
	ErrCornerOutOfBounds = errors.New("corner out of bounds")
)

// Point is a 2D point in pixel coordinates.
type Point struct {
	X, Y float64
}

// Quad is a quadrilateral as four corners ordered
// [TopLeft, TopRight, BottomRight, BottomLeft] (closed polygon winding).
type Quad [4]Point

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Width is the larger of the top and bottom side lengths.
func (q Quad) Width() float64 {
	return math.Max(Dist(q[TopLeft], q[TopRight]), Dist(q[BottomLeft], q[BottomRight]))
}

// Height is the larger of the left and right side lengths.
func (q Quad) Height() float64 {
	return math.Max(Dist(q[TopLeft], q[BottomLeft]), Dist(q[TopRight], q[BottomRight]))
}

// Area returns the absolute shoelace area of the polygon.
func (q Quad) Area() float64 {
	sum := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return math.Abs(sum) / 2
}

// IsDegenerate reports whether the corners cannot produce a valid perspective
// transform: two corners coincide or the enclosed area is (near) zero, which
// covers collinear configurations as well.
func (q Quad) IsDegenerate() bool {
	const eps = 1e-6
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if Dist(q[i], q[j]) < eps {
				return true
			}
		}
	}
	return q.Area() < eps
}
