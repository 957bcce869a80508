// pkg/control/seeker.go
package control

import (
	"math"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// DefaultAimTolerance is how far off target, in radians, the seeker still fires
const DefaultAimTolerance = 0.05

// CoinSeeker heads for the coin and shoots at the nearest enemy it can see
type CoinSeeker struct {
	AimTolerance float64
}

// Act implements Controller
func (c CoinSeeker) Act(s State) (Action, error) {
	var action Action
	if s.Coin != nil {
		coin := *s.Coin
		action.MoveToward = &coin
	}

	if s.Enemy == nil || !s.Enemy.Visible {
		return action, nil
	}

	tolerance := c.AimTolerance
	if tolerance <= 0 {
		tolerance = DefaultAimTolerance
	}
	bearing := s.Enemy.Position.Sub(s.Position).Angle()
	action.AimToward = AngleTarget(bearing)
	action.Shoot = s.ShotCooldown == 0 &&
		math.Abs(physics.AngleDifference(s.TurretRotation, bearing)) <= tolerance
	return action, nil
}
