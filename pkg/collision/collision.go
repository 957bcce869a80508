// pkg/collision/collision.go

// Package collision detects overlapping hitboxes and pushes dynamic bodies
// apart using the minimum translation vector.
package collision

import (
	"github.com/opd-ai/go-tankwars/pkg/physics"
	"github.com/opd-ai/go-tankwars/pkg/spatial"
)

// Collider is a body that takes part in collision resolution
type Collider interface {
	// ID uniquely identifies the body within its arena
	ID() uint64
	// AbsoluteHitbox returns the hitbox in world coordinates
	AbsoluteHitbox() physics.Polygon
	// Rect returns the bounding rectangle of the absolute hitbox
	Rect() physics.Rect
	// IsStatic bodies are never displaced
	IsStatic() bool
	// ReactsToCollisions is false for bodies that only want notification
	ReactsToCollisions() bool
	// IgnoresCollisionWith reports whether id is in the body's filter
	IgnoresCollisionWith(id uint64) bool
	// Displace moves the body by delta
	Displace(delta physics.Vector2D)
	// OnCollide notifies the body that it overlaps other. translation is
	// the displacement that would separate this body from other.
	OnCollide(other Collider, translation physics.Vector2D)
}

// Indexable is a Collider usable as a quadtree key
type Indexable interface {
	comparable
	Collider
}

// Contact records a notified collision. Translation is the vector A
// received; B received its negation.
type Contact struct {
	A           Collider
	B           Collider
	Translation physics.Vector2D
}

// EntitiesColliding reports whether a and b overlap and, if so, the
// translation that separates a from b. Bodies filtered by either side
// never collide.
func EntitiesColliding(a, b Collider) (bool, physics.Vector2D) {
	if a.IgnoresCollisionWith(b.ID()) || b.IgnoresCollisionWith(a.ID()) {
		return false, physics.Vector2D{}
	}

	result := physics.CheckCollision(a.AbsoluteHitbox(), b.AbsoluteHitbox())
	if !result.Collided {
		return false, physics.Vector2D{}
	}
	return true, result.Translation
}

// ResolvePair notifies and separates a colliding pair. The second result is
// false when nothing happened: both bodies static, no overlap, or bodies
// merely touching.
func ResolvePair(a, b Collider) (Contact, bool) {
	if a.IsStatic() && b.IsStatic() {
		return Contact{}, false
	}

	colliding, t := EntitiesColliding(a, b)
	if !colliding || t.LengthSquared() == 0 {
		return Contact{}, false
	}

	a.OnCollide(b, t)
	b.OnCollide(a, t.Negate())
	contact := Contact{A: a, B: b, Translation: t}

	if !a.ReactsToCollisions() || !b.ReactsToCollisions() {
		return contact, true
	}

	switch {
	case !a.IsStatic() && !b.IsStatic():
		half := t.Scale(0.5)
		a.Displace(half)
		b.Displace(half.Negate())
	case !a.IsStatic():
		a.Displace(t)
	default:
		b.Displace(t.Negate())
	}
	return contact, true
}

// ResolveAll resolves every overlapping pair reported by the index, in the
// order the index enumerates them.
func ResolveAll[T Indexable](index *spatial.Quadtree[T]) []Contact {
	var contacts []Contact
	for _, pair := range index.FindAllIntersections() {
		if c, ok := ResolvePair(pair.A, pair.B); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// Step indexes the colliders by their current rectangles and resolves every
// collision once. Movement must already be integrated for this tick.
func Step[T Indexable](colliders []T, cfg spatial.Config, padding float64) []Contact {
	index := spatial.FromObjectsPadded(colliders, rectOf[T], centerOf[T], cfg, padding)
	return ResolveAll(index)
}

func rectOf[T Collider](c T) physics.Rect {
	return c.Rect()
}

func centerOf[T Collider](c T) physics.Vector2D {
	return c.Rect().Center()
}
