// pkg/control/control.go

// Package control defines what robot controllers observe and how they
// answer each tick.
package control

import "github.com/opd-ai/go-tankwars/pkg/physics"

// BulletInfo describes an enemy bullet near the observing robot
type BulletInfo struct {
	Position physics.Vector2D `json:"position"`
	Velocity physics.Vector2D `json:"velocity"`
	// Trail holds the points the bullet recently passed, newest first
	Trail []physics.Vector2D `json:"trail,omitempty"`
}

// EnemyInfo describes the nearest living enemy. Everything except
// Position and Visible is only meaningful when Visible is true.
type EnemyInfo struct {
	Health         float64          `json:"health"`
	Coins          int              `json:"coins"`
	Position       physics.Vector2D `json:"position"`
	Velocity       physics.Vector2D `json:"velocity"`
	Rotation       float64          `json:"rotation"`
	TurretRotation float64          `json:"turretRotation"`
	ShotCooldown   float64          `json:"shotCooldown"`
	Visible        bool             `json:"visible"`
}

// State is a robot's observation of the arena for one tick. Health values
// are fractions of maximum health and angles are radians in [0, 2pi).
type State struct {
	TimeDelta       float64          `json:"timeDelta"`
	Health          float64          `json:"health"`
	Coins           int              `json:"coins"`
	Position        physics.Vector2D `json:"position"`
	MoveSpeed       float64          `json:"moveSpeed"`
	Rotation        float64          `json:"rotation"`
	TurnSpeed       float64          `json:"turnSpeed"`
	TurretRotation  float64          `json:"turretRotation"`
	TurretTurnSpeed float64          `json:"turretTurnSpeed"`
	ShotCooldown    float64          `json:"shotCooldown"`
	ShotSpeed       float64          `json:"shotSpeed"`

	// Enemy is nil when no other robot is alive
	Enemy   *EnemyInfo        `json:"enemy,omitempty"`
	Bullets []BulletInfo      `json:"bullets"`
	Coin    *physics.Vector2D `json:"coin,omitempty"`
}

// Target is either an absolute angle or a point to face. Exactly one
// field should be set.
type Target struct {
	Angle *float64          `json:"angle,omitempty"`
	Point *physics.Vector2D `json:"point,omitempty"`
}

// AngleTarget returns a target facing the given absolute angle
func AngleTarget(angle float64) *Target {
	return &Target{Angle: &angle}
}

// PointTarget returns a target facing the given point
func PointTarget(point physics.Vector2D) *Target {
	return &Target{Point: &point}
}

// Action is a controller's answer for one tick. Powers are in [-1, 1].
// TurnToward overrides TurnPower, MoveToward overrides both MovePower and
// TurnPower, and AimToward overrides TurretTurnPower.
type Action struct {
	MovePower       float64           `json:"movePower"`
	TurnPower       float64           `json:"turnPower"`
	TurretTurnPower float64           `json:"turretTurnPower"`
	TurnToward      *Target           `json:"turnToward,omitempty"`
	MoveToward      *physics.Vector2D `json:"moveToward,omitempty"`
	AimToward       *Target           `json:"aimToward,omitempty"`
	Shoot           bool              `json:"shoot"`
}

// Controller decides a robot's action from its observation
type Controller interface {
	Act(state State) (Action, error)
}

// ControllerFunc adapts a function to the Controller interface
type ControllerFunc func(State) (Action, error)

// Act calls f(state)
func (f ControllerFunc) Act(state State) (Action, error) {
	return f(state)
}

// Idle is a controller that never does anything
var Idle = ControllerFunc(func(State) (Action, error) {
	return Action{}, nil
})
