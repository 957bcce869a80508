// pkg/entity/entity.go
package entity

import (
	"fmt"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-tankwars/pkg/collision"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// Kind identifies one of the fixed entity types of an arena
type Kind int

const (
	KindRobot Kind = iota
	KindBullet
	KindWall
	KindCoin
)

func (k Kind) String() string {
	switch k {
	case KindRobot:
		return "robot"
	case KindBullet:
		return "bullet"
	case KindWall:
		return "wall"
	case KindCoin:
		return "coin"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entity is the base interface for all arena objects. The set of
// implementations is closed: Robot, Bullet, Wall and Coin.
type Entity interface {
	ecs.BasicFace
	collision.Collider
	Kind() Kind
	Position() physics.Vector2D
	Rotation() float64
	Update(deltaTime float64)
	Alive() bool
	Destroy()
	sealed()
}

// Body contains the pose, hitbox and collision filter shared by all
// entities. The absolute hitbox and bounding rectangle are cached and
// recomputed only after the position or rotation changes.
type Body struct {
	ecs.BasicEntity
	position  physics.Vector2D
	rotation  float64
	hitbox    physics.Polygon
	filter    map[uint64]struct{}
	destroyed bool

	cacheValid    bool
	cachePosition physics.Vector2D
	cacheRotation float64
	cacheHitbox   physics.Polygon
	cacheRect     physics.Rect
}

func newBody(position physics.Vector2D, rotation float64, hitbox physics.Polygon) Body {
	return Body{
		BasicEntity: ecs.NewBasic(),
		position:    position,
		rotation:    physics.NormalizeAngle(rotation),
		hitbox:      hitbox,
		filter:      make(map[uint64]struct{}),
	}
}

func (b *Body) sealed() {}

// Position returns the entity's position
func (b *Body) Position() physics.Vector2D {
	return b.position
}

// SetPosition moves the entity
func (b *Body) SetPosition(p physics.Vector2D) {
	b.position = p
}

// Rotation returns the entity's rotation in [0, 2π)
func (b *Body) Rotation() float64 {
	return b.rotation
}

// SetRotation sets the rotation, normalized into [0, 2π)
func (b *Body) SetRotation(r float64) {
	b.rotation = physics.NormalizeAngle(r)
}

// Displace moves the entity by delta
func (b *Body) Displace(delta physics.Vector2D) {
	b.position = b.position.Add(delta)
}

// Hitbox returns a copy of the local hitbox vertices
func (b *Body) Hitbox() physics.Polygon {
	return append(physics.Polygon(nil), b.hitbox...)
}

func (b *Body) refresh() {
	if b.cacheValid && b.cachePosition == b.position && b.cacheRotation == b.rotation {
		return
	}
	b.cacheHitbox = b.hitbox.Transform(b.rotation, b.position)
	b.cacheRect = b.cacheHitbox.Bounds()
	b.cachePosition = b.position
	b.cacheRotation = b.rotation
	b.cacheValid = true
}

// AbsoluteHitbox returns the hitbox rotated and translated into world
// space. The returned slice must not be modified.
func (b *Body) AbsoluteHitbox() physics.Polygon {
	b.refresh()
	return b.cacheHitbox
}

// Rect returns the bounding rectangle of the absolute hitbox
func (b *Body) Rect() physics.Rect {
	b.refresh()
	return b.cacheRect
}

// IsStatic reports whether collisions may displace the entity
func (b *Body) IsStatic() bool {
	return false
}

// ReactsToCollisions reports whether collisions displace the entity
func (b *Body) ReactsToCollisions() bool {
	return true
}

// IgnoreCollisionsWith adds id to the entity's collision filter
func (b *Body) IgnoreCollisionsWith(id uint64) {
	b.filter[id] = struct{}{}
}

// IgnoresCollisionWith reports whether id is in the collision filter
func (b *Body) IgnoresCollisionWith(id uint64) bool {
	_, ok := b.filter[id]
	return ok
}

// OnCollide does nothing by default
func (b *Body) OnCollide(collision.Collider, physics.Vector2D) {}

// Update does nothing by default
func (b *Body) Update(float64) {}

// Alive reports whether the entity has not been destroyed
func (b *Body) Alive() bool {
	return !b.destroyed
}

// Destroy marks the entity for removal from its arena. Destroying an
// entity twice is a programming error and panics.
func (b *Body) Destroy() {
	if b.destroyed {
		panic(fmt.Sprintf("entity: entity %d destroyed twice", b.ID()))
	}
	b.destroyed = true
}
