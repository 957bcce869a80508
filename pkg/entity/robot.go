// pkg/entity/robot.go
package entity

import (
	"math"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// alignedAngle is how closely a robot must face a target before
// MoveToward drives forward.
const alignedAngle = math.Pi / 16

// RobotStats contains the base statistics of a robot
type RobotStats struct {
	MaxHealth       float64 `json:"maxHealth"`
	MoveSpeed       float64 `json:"moveSpeed"`
	TurnSpeed       float64 `json:"turnSpeed"`
	TurretTurnSpeed float64 `json:"turretTurnSpeed"`
	ShotCooldown    float64 `json:"shotCooldown"`
	HitboxLength    float64 `json:"hitboxLength"`
	HitboxWidth     float64 `json:"hitboxWidth"`
	TurretLength    float64 `json:"turretLength"`
}

// DefaultRobotStats returns the standard tank statistics
func DefaultRobotStats() RobotStats {
	return RobotStats{
		MaxHealth:       100,
		MoveSpeed:       300,
		TurnSpeed:       math.Pi,
		TurretTurnSpeed: 1.5 * math.Pi,
		ShotCooldown:    1,
		HitboxLength:    136,
		HitboxWidth:     130,
		TurretLength:    70,
	}
}

// Robot is a tank that drives, turns its turret and shoots bullets
type Robot struct {
	Body
	Name string

	stats       RobotStats
	bulletStats BulletStats
	clock       func() float64

	health          float64
	coins           int
	deathTime       float64
	movePower       float64
	turnPower       float64
	turretTurnPower float64
	turretRotation  float64
	willShoot       bool
	cooldown        float64
	lastVelocity    physics.Vector2D
	fired           []*Bullet
}

// NewRobot creates a robot with full health at the origin
func NewRobot(name string, stats RobotStats, bulletStats BulletStats) *Robot {
	hitbox := physics.BoxPolygon(stats.HitboxLength/2, stats.HitboxWidth/2)
	return &Robot{
		Body:        newBody(physics.Vector2D{}, 0, hitbox),
		Name:        name,
		stats:       stats,
		bulletStats: bulletStats,
		health:      stats.MaxHealth,
		deathTime:   math.Inf(1),
	}
}

// Kind returns KindRobot
func (r *Robot) Kind() Kind {
	return KindRobot
}

// Stats returns the robot's statistics
func (r *Robot) Stats() RobotStats {
	return r.stats
}

// BulletStats returns the statistics of the bullets this robot fires
func (r *Robot) BulletStats() BulletStats {
	return r.bulletStats
}

// SetClock sets the source of simulation time used to stamp death time
func (r *Robot) SetClock(clock func() float64) {
	r.clock = clock
}

func (r *Robot) now() float64 {
	if r.clock == nil {
		return 0
	}
	return r.clock()
}

// Health returns the remaining health points
func (r *Robot) Health() float64 {
	return r.health
}

// HealthFraction returns health as a fraction of maximum health
func (r *Robot) HealthFraction() float64 {
	if r.stats.MaxHealth == 0 {
		return 0
	}
	return r.health / r.stats.MaxHealth
}

// SetHealth sets health, clamped at zero. A living robot reaching zero
// health is destroyed.
func (r *Robot) SetHealth(health float64) {
	r.health = math.Max(health, 0)
	if r.health == 0 && r.Alive() {
		r.Destroy()
	}
}

// Damage subtracts amount from health
func (r *Robot) Damage(amount float64) {
	r.SetHealth(r.health - amount)
}

// Destroy kills the robot and records the time of death
func (r *Robot) Destroy() {
	r.Body.Destroy()
	r.health = 0
	r.deathTime = r.now()
}

// DeathTime returns when the robot died, or +Inf while it is alive
func (r *Robot) DeathTime() float64 {
	return r.deathTime
}

// Coins returns the number of coins collected
func (r *Robot) Coins() int {
	return r.coins
}

// AddCoin awards one coin
func (r *Robot) AddCoin() {
	r.coins++
}

// LastVelocity returns the velocity of the last update
func (r *Robot) LastVelocity() physics.Vector2D {
	return r.lastVelocity
}

// TimeUntilNextShot returns the remaining shot cooldown in seconds
func (r *Robot) TimeUntilNextShot() float64 {
	return r.cooldown
}

// TurretRotation returns the turret's rotation in [0, 2π)
func (r *Robot) TurretRotation() float64 {
	return r.turretRotation
}

// SetTurretRotation sets the turret rotation, normalized into [0, 2π)
func (r *Robot) SetTurretRotation(rotation float64) {
	r.turretRotation = physics.NormalizeAngle(rotation)
}

func clampPower(p float64) float64 {
	return math.Min(math.Max(p, -1), 1)
}

// MovePower returns forward drive as a fraction of maximum speed
func (r *Robot) MovePower() float64 {
	return r.movePower
}

// SetMovePower sets forward drive, clamped to [-1, 1]
func (r *Robot) SetMovePower(p float64) {
	r.movePower = clampPower(p)
}

// TurnPower returns clockwise turning as a fraction of maximum turn speed
func (r *Robot) TurnPower() float64 {
	return r.turnPower
}

// SetTurnPower sets turning, clamped to [-1, 1]
func (r *Robot) SetTurnPower(p float64) {
	r.turnPower = clampPower(p)
}

// TurretTurnPower returns turret turning as a fraction of its maximum speed
func (r *Robot) TurretTurnPower() float64 {
	return r.turretTurnPower
}

// SetTurretTurnPower sets turret turning, clamped to [-1, 1]
func (r *Robot) SetTurretTurnPower(p float64) {
	r.turretTurnPower = clampPower(p)
}

// RequestShot asks the robot to fire during its next update
func (r *Robot) RequestShot(shoot bool) {
	r.willShoot = shoot
}

// TurnToward sets turn power so the robot faces angle after dt
func (r *Robot) TurnToward(angle, dt float64) {
	if dt == 0 {
		return
	}
	diff := physics.AngleDifference(r.rotation, angle)
	r.SetTurnPower(diff / (r.stats.TurnSpeed * dt))
}

// TurnTowardPoint sets turn power so the robot faces point
func (r *Robot) TurnTowardPoint(point physics.Vector2D, dt float64) {
	r.TurnToward(point.Sub(r.position).Angle(), dt)
}

// AimToward sets turret turn power so the turret faces angle after dt
func (r *Robot) AimToward(angle, dt float64) {
	if dt == 0 {
		return
	}
	diff := physics.AngleDifference(r.turretRotation, angle)
	r.SetTurretTurnPower(diff / (r.stats.TurretTurnSpeed * dt))
}

// AimTowardPoint sets turret turn power so the turret faces point
func (r *Robot) AimTowardPoint(point physics.Vector2D, dt float64) {
	r.AimToward(point.Sub(r.position).Angle(), dt)
}

// MoveToward turns toward point and, once roughly facing it, drives
// forward without overshooting.
func (r *Robot) MoveToward(point physics.Vector2D, dt float64) {
	if dt == 0 {
		return
	}
	r.TurnTowardPoint(point, dt)

	direction := point.Sub(r.position)
	diff := physics.AngleDifference(r.rotation, direction.Angle())
	if math.Abs(diff) < alignedAngle {
		r.SetMovePower(direction.Length() / (r.stats.MoveSpeed * dt))
	}
}

// Update drives, turns, turns the turret and fires if requested, then
// clears all powers for the next tick.
func (r *Robot) Update(dt float64) {
	state := physics.MovementState{Position: r.position, Rotation: r.rotation}
	physics.UpdateMovement(&state, dt, r.stats.MoveSpeed*r.movePower, 0)
	r.position = state.Position
	r.lastVelocity = state.Velocity
	r.SetRotation(r.rotation + r.stats.TurnSpeed*r.turnPower*dt)
	r.SetTurretRotation(r.turretRotation + r.stats.TurretTurnSpeed*r.turretTurnPower*dt)

	if r.willShoot {
		r.shoot()
	}

	r.movePower = 0
	r.turnPower = 0
	r.turretTurnPower = 0
	r.willShoot = false
	r.cooldown = math.Max(r.cooldown-dt, 0)
}

func (r *Robot) shoot() {
	if r.cooldown > 0 {
		return
	}
	tip := r.position.Add(physics.FromAngle(r.turretRotation, r.stats.TurretLength))
	r.fired = append(r.fired, NewBullet(tip, r.turretRotation, r, r.bulletStats))
	r.cooldown = r.stats.ShotCooldown
}

// TakeFired returns the bullets fired since the last call
func (r *Robot) TakeFired() []*Bullet {
	fired := r.fired
	r.fired = nil
	return fired
}
