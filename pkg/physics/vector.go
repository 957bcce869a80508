// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector2D represents a 2D vector with x and y components.
// The arena uses screen coordinates, so positive Y points down and
// positive angles turn clockwise on screen.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Negate returns the vector pointing the opposite way
func (v Vector2D) Negate() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the same direction.
// Normalizing the zero vector has no meaningful answer and panics.
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		panic("physics: cannot normalize a zero-length vector")
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// Angle returns the angle of the vector in radians
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle creates a vector from an angle and magnitude
func FromAngle(angle float64, magnitude float64) Vector2D {
	return Vector2D{
		X: magnitude * math.Cos(angle),
		Y: magnitude * math.Sin(angle),
	}
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Rotate rotates the vector by angle (in radians)
func (v Vector2D) Rotate(angle float64) Vector2D {
	r := mgl64.Rotate2D(angle).Mul2x1(mgl64.Vec2{v.X, v.Y})
	return Vector2D{X: r[0], Y: r[1]}
}

// Perpendicular returns the vector rotated by a quarter turn: (-y, x).
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Reflect mirrors the vector over a surface with the given unit normal.
func (v Vector2D) Reflect(normal Vector2D) Vector2D {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Lerp interpolates linearly between v (alpha 0) and other (alpha 1).
func (v Vector2D) Lerp(other Vector2D, alpha float64) Vector2D {
	return v.Add(other.Sub(v).Scale(alpha))
}

// ApproxEqual reports whether both components differ by at most eps.
func (v Vector2D) ApproxEqual(other Vector2D, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps && math.Abs(v.Y-other.Y) <= eps
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// NormalizeAngle maps an angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// AngleDifference returns the signed turn that brings from onto to,
// choosing the shorter direction. The result lies in [-π, π).
func AngleDifference(from, to float64) float64 {
	diff := NormalizeAngle(to - from)
	if diff < math.Pi {
		return diff
	}
	return -(2*math.Pi - diff)
}
