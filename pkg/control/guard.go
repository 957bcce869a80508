// pkg/control/guard.go
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-tankwars/pkg/logging"
)

// GuardSettings configures the circuit breaker around one controller
type GuardSettings struct {
	// MaxConsecutiveFailures opens the breaker
	MaxConsecutiveFailures int
	// OpenTimeout is how long the breaker stays open before a trial call
	OpenTimeout time.Duration
}

// Guard isolates a misbehaving controller. Errors and panics are turned
// into failures, and once the breaker opens the controller is skipped and
// the robot idles until the open timeout has elapsed.
type Guard struct {
	name       string
	controller Controller
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewGuard wraps controller in a circuit breaker named after the robot
func NewGuard(name string, controller Controller, settings GuardSettings, logger *logging.Logger) *Guard {
	g := &Guard{
		name:       name,
		controller: controller,
		logger:     logger,
	}
	maxFailures := uint32(settings.MaxConsecutiveFailures)
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "controller breaker state changed",
				"robot", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return g
}

// Act asks the controller for an action. On failure, or while the breaker
// is open, it returns the zero action together with the reason.
func (g *Guard) Act(ctx context.Context, state State) (Action, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.call(state)
	})
	if err != nil {
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.logger.Error(ctx, "controller failed", err, "robot", g.name)
		}
		return Action{}, fmt.Errorf("controller %s: %w", g.name, err)
	}
	return result.(Action), nil
}

func (g *Guard) call(state State) (action Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return g.controller.Act(state)
}

// State returns the current breaker state
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the breaker's request counters
func (g *Guard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}
