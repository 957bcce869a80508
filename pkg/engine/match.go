// pkg/engine/match.go
package engine

import (
	"context"
	"sort"

	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/event"
)

// Standing is a robot's place in the match results
type Standing struct {
	Place  int
	Name   string
	Coins  int
	Health float64
	// DeathTime is +Inf for robots still alive
	DeathTime float64
	Alive     bool
	Robot     *entity.Robot
}

func (s Standing) beats(other Standing) bool {
	if s.DeathTime != other.DeathTime {
		return s.DeathTime > other.DeathTime
	}
	if s.Coins != other.Coins {
		return s.Coins > other.Coins
	}
	return s.Health > other.Health
}

func (s Standing) ties(other Standing) bool {
	return s.DeathTime == other.DeathTime && s.Coins == other.Coins && s.Health == other.Health
}

// Rankings orders robots by survival time, then coins, then health. Robots
// still alive share the latest possible death time, and equal records
// share a place.
func (a *Arena) Rankings() []Standing {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rankings()
}

func (a *Arena) rankings() []Standing {
	standings := make([]Standing, len(a.robots))
	for i, slot := range a.robots {
		r := slot.robot
		standings[i] = Standing{
			Name:      r.Name,
			Coins:     r.Coins(),
			Health:    r.Health(),
			DeathTime: r.DeathTime(),
			Alive:     r.Alive(),
			Robot:     r,
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].beats(standings[j])
	})

	place := 0
	for i := range standings {
		if i == 0 || !standings[i].ties(standings[i-1]) {
			place++
		}
		standings[i].Place = place
	}
	return standings
}

// Start announces the match. Calling it again has no effect.
func (a *Arena) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return
	}
	a.started = true
	a.bus.Publish(event.NewMatchEvent(event.MatchStarted, a, a.simTime, a.matchID, len(a.robots)))
	a.logger.Info(a.ctx, "match started",
		"robots", len(a.robots),
		"width", a.originalSize.X,
		"height", a.originalSize.Y,
	)
}

// Run simulates fixed ticks of one frame each, as fast as possible, until
// the match is over or ctx is cancelled. It returns the final standings.
func (a *Arena) Run(ctx context.Context, timeLimit float64) ([]Standing, error) {
	a.Start()
	step := 1 / a.cfg.Simulation.FrameRate

	for a.Running(timeLimit) {
		if err := ctx.Err(); err != nil {
			a.finish("cancelled")
			return a.Rankings(), err
		}
		a.Update(step)
	}

	a.finish("completed")
	return a.Rankings(), nil
}

func (a *Arena) finish(reason string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	a.bus.Publish(event.NewMatchEvent(event.MatchEnded, a, a.simTime, a.matchID, len(a.robots)))
	a.logger.Info(a.ctx, "match ended",
		"reason", reason,
		"time", a.simTime,
		"ticks", a.ticks,
	)
	for _, s := range a.rankings() {
		a.logger.Info(a.ctx, "standing",
			"place", s.Place,
			"robot", s.Name,
			"coins", s.Coins,
			"health", s.Health,
			"death_time", s.DeathTime,
		)
	}
}
