// pkg/entity/bullet.go
package entity

import (
	"github.com/opd-ai/go-tankwars/pkg/collision"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// BulletStats contains the base statistics of a bullet
type BulletStats struct {
	Speed       float64 `json:"speed"`
	Radius      float64 `json:"radius"`
	Lifetime    float64 `json:"lifetime"`
	Damage      float64 `json:"damage"`
	TrailLength float64 `json:"trailLength"`
}

// DefaultBulletStats returns the standard bullet statistics
func DefaultBulletStats() BulletStats {
	return BulletStats{
		Speed:       500,
		Radius:      8,
		Lifetime:    2,
		Damage:      10,
		TrailLength: 128,
	}
}

// Bullet flies in a straight line, bounces off walls and damages the first
// robot it hits other than its shooter.
type Bullet struct {
	Body
	stats     BulletStats
	shooter   *Robot
	remaining float64
	path      []physics.Vector2D
}

// NewBullet creates a bullet fired by shooter. The shooter is added to the
// bullet's collision filter.
func NewBullet(position physics.Vector2D, rotation float64, shooter *Robot, stats BulletStats) *Bullet {
	b := &Bullet{
		Body:      newBody(position, rotation, physics.RegularPolygon(3, stats.Radius)),
		stats:     stats,
		shooter:   shooter,
		remaining: stats.Lifetime,
		path:      []physics.Vector2D{position},
	}
	if shooter != nil {
		b.IgnoreCollisionsWith(shooter.ID())
	}
	return b
}

// Kind returns KindBullet
func (b *Bullet) Kind() Kind {
	return KindBullet
}

// Shooter returns the robot that fired the bullet
func (b *Bullet) Shooter() *Robot {
	return b.shooter
}

// Velocity returns the bullet's current velocity
func (b *Bullet) Velocity() physics.Vector2D {
	return physics.FromAngle(b.rotation, b.stats.Speed)
}

// ReactsToCollisions returns false: bullets handle their own bouncing
func (b *Bullet) ReactsToCollisions() bool {
	return false
}

// Update advances the bullet and expires it once its lifetime runs out
func (b *Bullet) Update(dt float64) {
	b.position = b.position.Add(physics.FromAngle(b.rotation, b.stats.Speed*dt))
	b.remaining -= dt
	if b.remaining < 0 {
		b.Destroy()
	}
}

// OnCollide damages robots and bounces off walls
func (b *Bullet) OnCollide(other collision.Collider, translation physics.Vector2D) {
	if !b.Alive() || (b.shooter != nil && other == collision.Collider(b.shooter)) {
		return
	}

	switch o := other.(type) {
	case *Robot:
		o.Damage(b.stats.Damage)
		b.Destroy()
	case *Wall:
		b.position = b.position.Add(translation)

		heading := physics.FromAngle(b.rotation, 1)
		// Already moving away from the wall
		if heading.Dot(translation) > 0 {
			return
		}

		b.path = append(b.path, b.position)
		b.trimPath()
		reflected := heading.Reflect(translation.Normalize())
		b.SetRotation(reflected.Angle())
	}
}

// trimPath forgets bounce points that can no longer reach the trail
func (b *Bullet) trimPath() {
	total := 0.0
	for i := len(b.path) - 1; i > 0; i-- {
		total += b.path[i].Distance(b.path[i-1])
		if total >= b.stats.TrailLength {
			b.path = b.path[i-1:]
			return
		}
	}
}

// Trail returns the most recent stretch of the bullet's path, newest point
// first, capped at the configured trail length. It does not modify the
// bullet.
func (b *Bullet) Trail() []physics.Vector2D {
	vertices := []physics.Vector2D{b.position}
	total := 0.0

	for i := len(b.path) - 1; i >= 0; i-- {
		from := vertices[len(vertices)-1]
		to := b.path[i]
		distance := from.Distance(to)
		if distance == 0 {
			continue
		}

		if total+distance >= b.stats.TrailLength {
			alpha := (b.stats.TrailLength - total) / distance
			vertices = append(vertices, from.Lerp(to, alpha))
			break
		}

		total += distance
		vertices = append(vertices, to)
	}
	return vertices
}
