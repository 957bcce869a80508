// pkg/control/guard_test.go
package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-tankwars/pkg/logging"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

func testSettings() GuardSettings {
	return GuardSettings{MaxConsecutiveFailures: 3, OpenTimeout: time.Hour}
}

func TestGuardPassesActions(t *testing.T) {
	expected := Action{MovePower: 1, Shoot: true, AimToward: AngleTarget(1)}
	g := NewGuard("alpha", ControllerFunc(func(s State) (Action, error) {
		if s.Coins != 2 {
			t.Errorf("controller saw Coins = %d, expected 2", s.Coins)
		}
		return expected, nil
	}), testSettings(), logging.Discard())

	got, err := g.Act(context.Background(), State{Coins: 2})
	if err != nil {
		t.Fatalf("Act() error = %v", err)
	}
	if got.MovePower != 1 || !got.Shoot || got.AimToward == nil || *got.AimToward.Angle != 1 {
		t.Errorf("Act() = %+v, expected %+v", got, expected)
	}
}

func TestGuardIsolatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure func() (Action, error)
	}{
		{"error", func() (Action, error) { return Action{MovePower: 1}, errors.New("bad") }},
		{"panic", func() (Action, error) { panic("controller exploded") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			g := NewGuard("beta", ControllerFunc(func(State) (Action, error) {
				calls++
				return tt.failure()
			}), testSettings(), logging.Discard())

			for i := 0; i < 3; i++ {
				action, err := g.Act(context.Background(), State{})
				if err == nil {
					t.Fatalf("Act() call %d error = nil, expected failure", i)
				}
				if action != (Action{}) {
					t.Errorf("Act() = %+v, expected zero action", action)
				}
			}
			if g.State() != gobreaker.StateOpen {
				t.Fatalf("State() = %v, expected open", g.State())
			}

			_, err := g.Act(context.Background(), State{})
			if !errors.Is(err, gobreaker.ErrOpenState) {
				t.Errorf("Act() error = %v, expected ErrOpenState", err)
			}
			if calls != 3 {
				t.Errorf("controller called %d times, expected 3", calls)
			}
		})
	}
}

func TestGuardSuccessResetsFailures(t *testing.T) {
	fail := true
	g := NewGuard("gamma", ControllerFunc(func(State) (Action, error) {
		if fail {
			return Action{}, errors.New("flaky")
		}
		return Action{}, nil
	}), testSettings(), logging.Discard())

	for round := 0; round < 3; round++ {
		fail = true
		g.Act(context.Background(), State{})
		g.Act(context.Background(), State{})
		fail = false
		if _, err := g.Act(context.Background(), State{}); err != nil {
			t.Fatalf("round %d: Act() error = %v", round, err)
		}
	}
	if g.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, expected closed", g.State())
	}
}

func TestTargets(t *testing.T) {
	a := AngleTarget(2)
	if a.Angle == nil || *a.Angle != 2 || a.Point != nil {
		t.Errorf("AngleTarget(2) = %+v", a)
	}
	p := PointTarget(physics.Vector2D{X: 1, Y: 2})
	if p.Point == nil || *p.Point != (physics.Vector2D{X: 1, Y: 2}) || p.Angle != nil {
		t.Errorf("PointTarget() = %+v", p)
	}
}

func TestIdle(t *testing.T) {
	action, err := Idle.Act(State{})
	if err != nil || action != (Action{}) {
		t.Errorf("Idle.Act() = %+v, %v, expected zero action", action, err)
	}
}
