// pkg/physics/rect.go
package physics

import "math"

// Rect is an axis-aligned rectangle. Min holds the top-left corner and
// Max the bottom-right one, with Y growing downward.
type Rect struct {
	Min Vector2D
	Max Vector2D
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		Min: Vector2D{X: x, Y: y},
		Max: Vector2D{X: x + width, Y: y + height},
	}
}

// RectFromPoints returns the rectangle spanned by two corner points in any order
func RectFromPoints(a, b Vector2D) Rect {
	return Rect{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// RectAround returns the square of the given half-size centered at point
func RectAround(center Vector2D, halfSize float64) Rect {
	return Rect{
		Min: Vector2D{X: center.X - halfSize, Y: center.Y - halfSize},
		Max: Vector2D{X: center.X + halfSize, Y: center.Y + halfSize},
	}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() Vector2D {
	return Vector2D{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Intersects reports whether the interiors of two rectangles overlap.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X < other.Max.X && other.Min.X < r.Max.X &&
		r.Min.Y < other.Max.Y && other.Min.Y < r.Max.Y
}

// ContainsRect reports whether other lies entirely within r
func (r Rect) ContainsRect(other Rect) bool {
	return other.Min.X >= r.Min.X && other.Max.X <= r.Max.X &&
		other.Min.Y >= r.Min.Y && other.Max.Y <= r.Max.Y
}

// ContainsPoint reports whether the point lies inside r or on its edge
func (r Rect) ContainsPoint(p Vector2D) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// DistanceToPoint returns the distance from p to the nearest point of r,
// zero when p is inside.
func (r Rect) DistanceToPoint(p Vector2D) float64 {
	dx := math.Max(math.Max(r.Min.X-p.X, 0), p.X-r.Max.X)
	dy := math.Max(math.Max(r.Min.Y-p.Y, 0), p.Y-r.Max.Y)
	return math.Hypot(dx, dy)
}

// Pad grows the rectangle by margin on every side
func (r Rect) Pad(margin float64) Rect {
	return Rect{
		Min: Vector2D{X: r.Min.X - margin, Y: r.Min.Y - margin},
		Max: Vector2D{X: r.Max.X + margin, Y: r.Max.Y + margin},
	}
}

// Union returns the smallest rectangle covering both rectangles
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Vector2D{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Vector2D{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

// Quadrant returns one quarter of the rectangle.
// Index 0 is north-west, 1 north-east, 2 south-west and 3 south-east.
func (r Rect) Quadrant(index int) Rect {
	c := r.Center()
	switch index {
	case 0:
		return Rect{Min: r.Min, Max: c}
	case 1:
		return Rect{Min: Vector2D{X: c.X, Y: r.Min.Y}, Max: Vector2D{X: r.Max.X, Y: c.Y}}
	case 2:
		return Rect{Min: Vector2D{X: r.Min.X, Y: c.Y}, Max: Vector2D{X: c.X, Y: r.Max.Y}}
	case 3:
		return Rect{Min: c, Max: r.Max}
	default:
		panic("physics: quadrant index out of range")
	}
}
