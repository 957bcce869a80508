// pkg/validation/action.go
package validation

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

func sanitizePower(field string, p float64, warnings *[]string) float64 {
	if !finite(p) {
		*warnings = append(*warnings, fmt.Sprintf("%s should be a valid number; got %v; defaulting to 0", field, p))
		return 0
	}
	return math.Min(math.Max(p, -1), 1)
}

func sanitizePoint(field string, p *physics.Vector2D, warnings *[]string) *physics.Vector2D {
	if p == nil {
		return nil
	}
	if !p.IsFinite() {
		*warnings = append(*warnings, fmt.Sprintf("%s values must be valid numbers; got (%v, %v); ignoring", field, p.X, p.Y))
		return nil
	}
	out := *p
	return &out
}

func sanitizeTarget(field string, t *control.Target, warnings *[]string) *control.Target {
	if t == nil {
		return nil
	}
	switch {
	case t.Angle != nil && t.Point != nil:
		*warnings = append(*warnings, fmt.Sprintf("%s should be an angle or a point, not both; ignoring", field))
		return nil
	case t.Angle != nil:
		if !finite(*t.Angle) {
			*warnings = append(*warnings, fmt.Sprintf("%s should be a valid angle; got %v; ignoring", field, *t.Angle))
			return nil
		}
		return control.AngleTarget(physics.NormalizeAngle(*t.Angle))
	case t.Point != nil:
		p := sanitizePoint(field, t.Point, warnings)
		if p == nil {
			return nil
		}
		return &control.Target{Point: p}
	default:
		*warnings = append(*warnings, fmt.Sprintf("%s should hold an angle or a point; ignoring", field))
		return nil
	}
}

// SanitizeAction returns a copy of a with non-finite powers zeroed, powers
// clamped to [-1, 1], angles normalised and invalid targets dropped,
// together with one warning per correction.
func SanitizeAction(a control.Action) (control.Action, []string) {
	var warnings []string
	return control.Action{
		MovePower:       sanitizePower("movePower", a.MovePower, &warnings),
		TurnPower:       sanitizePower("turnPower", a.TurnPower, &warnings),
		TurretTurnPower: sanitizePower("turretTurnPower", a.TurretTurnPower, &warnings),
		TurnToward:      sanitizeTarget("turnToward", a.TurnToward, &warnings),
		MoveToward:      sanitizePoint("moveToward", a.MoveToward, &warnings),
		AimToward:       sanitizeTarget("aimToward", a.AimToward, &warnings),
		Shoot:           a.Shoot,
	}, warnings
}
