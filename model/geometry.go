package model

import "math"

// Point represents a 2D point in page space
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is an axis-aligned rectangle in page points.
//
// The origin is the top-left corner of the page and Y grows downward, so
// Y0 is the top edge and Y1 the bottom edge.
type BBox struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewBBox creates a bounding box from an origin and a size
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X0: x, Y0: y, X1: x + width, Y1: y + height}
}

// NewBBoxFromPoints creates the smallest bounding box containing both points
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return BBox{
		X0: math.Min(p1.X, p2.X),
		Y0: math.Min(p1.Y, p2.Y),
		X1: math.Max(p1.X, p2.X),
		Y1: math.Max(p1.Y, p2.Y),
	}
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// Contains checks if a point is inside the bounding box (edges included)
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// ContainsBox checks if other lies entirely inside b, allowing tol slack
func (b BBox) ContainsBox(other BBox, tol float64) bool {
	return other.X0 >= b.X0-tol && other.X1 <= b.X1+tol &&
		other.Y0 >= b.Y0-tol && other.Y1 <= b.Y1+tol
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// Intersection returns the overlapping area of two boxes, or an empty box
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
}

// Union returns the smallest box containing both boxes.
// An empty receiver yields other unchanged.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Expand grows the box by margin on every side
func (b BBox) Expand(margin float64) BBox {
	return BBox{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
}

// OverlapRatio returns the intersection area divided by the smaller area
func (b BBox) OverlapRatio(other BBox) float64 {
	inter := b.Intersection(other).Area()
	smaller := math.Min(b.Area(), other.Area())
	if smaller <= 0 {
		return 0
	}
	return inter / smaller
}

// VerticalOverlapRatio returns how much of the shorter box's height is
// shared with the other box (0..1).
func (b BBox) VerticalOverlapRatio(other BBox) float64 {
	overlap := math.Min(b.Y1, other.Y1) - math.Max(b.Y0, other.Y0)
	if overlap <= 0 {
		return 0
	}
	shorter := math.Min(b.Height(), other.Height())
	if shorter <= 0 {
		return 0
	}
	return overlap / shorter
}

// HorizontalGap returns the distance between the right edge of b and the
// left edge of other. Negative values mean the boxes overlap horizontally.
func (b BBox) HorizontalGap(other BBox) float64 {
	return other.X0 - b.X1
}

// IsEmpty returns true if the box has no area
func (b BBox) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect maps an axis-aligned rectangle through the matrix and
// returns the bounding box of the four transformed corners.
func (m Matrix) TransformRect(x0, y0, x1, y1 float64) BBox {
	pts := [4]Point{
		m.Transform(Point{X: x0, Y: y0}),
		m.Transform(Point{X: x1, Y: y0}),
		m.Transform(Point{X: x0, Y: y1}),
		m.Transform(Point{X: x1, Y: y1}),
	}
	box := BBox{X0: pts[0].X, Y0: pts[0].Y, X1: pts[0].X, Y1: pts[0].Y}
	for _, p := range pts[1:] {
		box.X0 = math.Min(box.X0, p.X)
		box.Y0 = math.Min(box.Y0, p.Y)
		box.X1 = math.Max(box.X1, p.X)
		box.Y1 = math.Max(box.Y1, p.Y)
	}
	return box
}

// Multiply returns m × other (apply m first, then other)
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// ScaleFactor returns the length a unit vector has after transformation
// along the y axis. It is used to turn text space font sizes into page
// space sizes.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(m[2]*m[2] + m[3]*m[3])
}
