// pkg/physics/collision.go
package physics

// Circle represents a circular proximity area
type Circle struct {
	Center Vector2D
	Radius float64
}

// Contains reports whether point lies within the circle, edge included
func (c Circle) Contains(point Vector2D) bool {
	return c.Center.Distance(point) <= c.Radius
}

// Bounds returns the axis-aligned square enclosing the circle
func (c Circle) Bounds() Rect {
	return RectAround(c.Center, c.Radius)
}

// CollisionResult contains information about a collision between two
// polygons. Translation is the minimum displacement of the first polygon
// that separates it from the second.
type CollisionResult struct {
	Collided    bool
	Translation Vector2D
	Normal      Vector2D
	Penetration float64
}

// CheckCollision performs the separating axis test on two convex polygons
// and, when they overlap, computes the minimum translation vector.
func CheckCollision(a, b Polygon) CollisionResult {
	if !PolygonsIntersect(a, b) {
		return CollisionResult{Collided: false}
	}

	translation := MinimumTranslationVector(a, b)
	penetration := translation.Length()

	// Touching polygons share an edge but need no separation
	if penetration == 0 {
		return CollisionResult{Collided: true}
	}

	return CollisionResult{
		Collided:    true,
		Translation: translation,
		Normal:      translation.Scale(1 / penetration),
		Penetration: penetration,
	}
}
