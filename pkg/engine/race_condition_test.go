// pkg/engine/race_condition_test.go
package engine

import (
	"sync"
	"testing"

	"github.com/opd-ai/go-tankwars/pkg/config"
	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// TestArenaConcurrentQueries runs ticks while other goroutines query and
// add entities. Run with -race to detect unsynchronised access.
func TestArenaConcurrentQueries(t *testing.T) {
	a := newTestArena(t, config.DefaultConfig(), 1000, 1000)
	shooter := control.ControllerFunc(func(state control.State) (control.Action, error) {
		action := control.Action{Shoot: true}
		if state.Coin != nil {
			action.MoveToward = state.Coin
		}
		return action, nil
	})
	first := addRobotAt(t, a, "first", physics.Vector2D{X: 200, Y: 200}, shooter)
	second := addRobotAt(t, a, "second", physics.Vector2D{X: 800, Y: 800}, shooter)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			a.Update(frame)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			a.NearestRobot(first)
			a.NearbyBullets(second, 256)
			a.CanSee(first, physics.Vector2D{X: 800, Y: 800})
			a.Coin()
			a.Rankings()
			a.Entities()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			a.AddEntity(entity.NewCoin(physics.Vector2D{X: 500, Y: float64(100 + 10*i)}, 4))
		}
	}()

	wg.Wait()

	if a.Ticks() != 100 {
		t.Errorf("Ticks() = %d, expected 100", a.Ticks())
	}
}
