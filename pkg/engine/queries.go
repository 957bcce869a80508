// pkg/engine/queries.go
package engine

import (
	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// NearestRobot returns the closest living robot other than robot. It finds
// nothing before the first index build.
func (a *Arena) NearestRobot(robot *entity.Robot) (*entity.Robot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nearestRobot(robot)
}

func (a *Arena) nearestRobot(robot *entity.Robot) (*entity.Robot, bool) {
	if a.entityTree == nil {
		return nil, false
	}
	found, ok := a.entityTree.NearestNeighbor(robot.Position(), func(e entity.Entity) bool {
		other, isRobot := e.(*entity.Robot)
		return isRobot && other != robot && other.Alive()
	})
	if !ok {
		return nil, false
	}
	return found.(*entity.Robot), true
}

// NearbyBullets returns the bullets fired by other robots within radius of
// robot
func (a *Arena) NearbyBullets(robot *entity.Robot, radius float64) []control.BulletInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nearbyBullets(robot, radius)
}

func (a *Arena) nearbyBullets(robot *entity.Robot, radius float64) []control.BulletInfo {
	if a.entityTree == nil || radius <= 0 {
		return nil
	}

	area := physics.Circle{Center: robot.Position(), Radius: radius}
	var out []control.BulletInfo
	for _, e := range a.entityTree.Query(area.Bounds()) {
		b, ok := e.(*entity.Bullet)
		if !ok || !b.Alive() || b.Shooter() == robot {
			continue
		}
		if !area.Contains(b.Position()) {
			continue
		}
		out = append(out, control.BulletInfo{
			Position: b.Position(),
			Velocity: b.Velocity(),
			Trail:    b.Trail(),
		})
	}
	return out
}

// CanSee reports whether the straight line from robot to point crosses no
// wall. Only true wall hitboxes block sight.
func (a *Arena) CanSee(robot *entity.Robot, point physics.Vector2D) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canSee(robot.Position(), point)
}

func (a *Arena) canSee(from, to physics.Vector2D) bool {
	if a.wallTree == nil {
		return true
	}
	var segments []physics.Segment
	for _, w := range a.wallTree.Query(physics.RectFromPoints(from, to).Pad(1)) {
		segments = append(segments, w.AbsoluteHitbox().Edges(0)...)
	}
	return physics.CanSee(from, to, segments, a.cfg.Navigation.NodeEpsilon)
}

// Pathfind returns waypoints leading robot to point, dropping any the robot
// already stands on. With pathfinding disabled the point itself is the only
// waypoint. It returns false when no waypoint is left.
func (a *Arena) Pathfind(robot *entity.Robot, point physics.Vector2D) ([]physics.Vector2D, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pathfind(robot, point)
}

func (a *Arena) pathfind(robot *entity.Robot, point physics.Vector2D) ([]physics.Vector2D, bool) {
	if !a.cfg.Simulation.UsePathfinding {
		return []physics.Vector2D{point}, true
	}
	if a.graph == nil {
		return nil, false
	}

	position := robot.Position()
	// Ending short of the goal still yields the closest approach
	path, _ := a.graph.Pathfind(position, robot.Rotation(), point)

	i := 0
	for i < len(path) && path[i].Distance(position) <= pathWaypointReached {
		i++
	}
	if i == len(path) {
		return nil, false
	}
	return path[i:], true
}

// observe builds the controller's view of the arena for robot
func (a *Arena) observe(robot *entity.Robot) control.State {
	stats := robot.Stats()
	state := control.State{
		TimeDelta:       a.step,
		Health:          robot.HealthFraction(),
		Coins:           robot.Coins(),
		Position:        robot.Position(),
		MoveSpeed:       stats.MoveSpeed,
		Rotation:        robot.Rotation(),
		TurnSpeed:       stats.TurnSpeed,
		TurretRotation:  robot.TurretRotation(),
		TurretTurnSpeed: stats.TurretTurnSpeed,
		ShotCooldown:    robot.TimeUntilNextShot(),
		ShotSpeed:       robot.BulletStats().Speed,
		Bullets:         a.nearbyBullets(robot, a.cfg.Simulation.NearbyBulletRadius),
	}

	if enemy, ok := a.nearestRobot(robot); ok {
		state.Enemy = &control.EnemyInfo{
			Health:         enemy.HealthFraction(),
			Coins:          enemy.Coins(),
			Position:       enemy.Position(),
			Velocity:       enemy.LastVelocity(),
			Rotation:       enemy.Rotation(),
			TurretRotation: enemy.TurretRotation(),
			ShotCooldown:   enemy.TimeUntilNextShot(),
			Visible:        a.canSee(robot.Position(), enemy.Position()),
		}
	}
	if a.coin != nil && a.coin.Alive() {
		position := a.coin.Position()
		state.Coin = &position
	}
	return state
}
