// pkg/entity/wall.go
package entity

import (
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// Wall is an immovable rectangular obstacle. Its absolute hitbox, bounding
// rectangle and pathfinding hitbox are computed once at construction.
type Wall struct {
	Body
	size              physics.Vector2D
	absolute          physics.Polygon
	rect              physics.Rect
	pathfindingHitbox physics.Polygon
	pathfindingRect   physics.Rect
}

// NewWall creates a wall of the given size centered at position. The
// pathfinding hitbox is the wall grown by clearance on each local axis,
// typically half the size of the robots that must route around it.
func NewWall(position, size physics.Vector2D, rotation float64, clearance physics.Vector2D) *Wall {
	local := physics.BoxPolygon(size.X/2, size.Y/2)
	w := &Wall{
		Body: newBody(position, rotation, local),
		size: size,
	}
	w.absolute = local.Transform(w.rotation, w.position)
	w.rect = w.absolute.Bounds()
	w.pathfindingHitbox = physics.ExpandPolygon(local, clearance).Transform(w.rotation, w.position)
	w.pathfindingRect = w.pathfindingHitbox.Bounds()
	return w
}

// Kind returns KindWall
func (w *Wall) Kind() Kind {
	return KindWall
}

// Size returns the wall's width and height
func (w *Wall) Size() physics.Vector2D {
	return w.size
}

// AbsoluteHitbox returns the precomputed world-space hitbox
func (w *Wall) AbsoluteHitbox() physics.Polygon {
	return w.absolute
}

// Rect returns the precomputed bounding rectangle
func (w *Wall) Rect() physics.Rect {
	return w.rect
}

// PathfindingHitbox returns the hitbox expanded by the robot clearance
func (w *Wall) PathfindingHitbox() physics.Polygon {
	return w.pathfindingHitbox
}

// PathfindingRect returns the bounding rectangle of the pathfinding hitbox
func (w *Wall) PathfindingRect() physics.Rect {
	return w.pathfindingRect
}

// IsStatic returns true: walls never move
func (w *Wall) IsStatic() bool {
	return true
}

// SetPosition panics; walls cannot move once built
func (w *Wall) SetPosition(physics.Vector2D) {
	panic("entity: walls cannot be moved")
}

// SetRotation panics; walls cannot turn once built
func (w *Wall) SetRotation(float64) {
	panic("entity: walls cannot be rotated")
}

// Displace panics; collision resolution never displaces static entities
func (w *Wall) Displace(physics.Vector2D) {
	panic("entity: walls cannot be displaced")
}
