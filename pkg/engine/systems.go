// pkg/engine/systems.go
package engine

import (
	"math"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-tankwars/pkg/collision"
	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/event"
	"github.com/opd-ai/go-tankwars/pkg/physics"
	"github.com/opd-ai/go-tankwars/pkg/spatial"
	"github.com/opd-ai/go-tankwars/pkg/validation"
)

// The world runs systems from the highest priority down, which fixes the
// order of the stages within a tick.
const (
	priorityBoundary = 60 - iota*10
	priorityControl
	priorityMotion
	priorityCollision
	priorityClash
	priorityCleanup
)

func (a *Arena) addSystems() {
	a.world.AddSystem(&boundarySystem{arena: a})
	a.world.AddSystem(&controlSystem{arena: a})
	a.world.AddSystem(&motionSystem{arena: a})
	a.world.AddSystem(&collisionSystem{arena: a})
	a.world.AddSystem(&clashSystem{arena: a})
	a.world.AddSystem(&cleanupSystem{arena: a})
}

// Systems read the exact float64 step from the arena; the float32 handed
// over by the world only triggers them.

// boundarySystem shrinks the arena and keeps a coin inside it
type boundarySystem struct {
	arena *Arena
}

func (s *boundarySystem) Priority() int { return priorityBoundary }

func (s *boundarySystem) Remove(ecs.BasicEntity) {}

func (s *boundarySystem) Update(float32) {
	s.arena.shrink()
	s.arena.ensureCoin()
}

// controlSystem asks every living robot's controller for an action
type controlSystem struct {
	arena *Arena
}

func (s *controlSystem) Priority() int { return priorityControl }

func (s *controlSystem) Remove(e ecs.BasicEntity) {
	for _, slot := range s.arena.robots {
		if slot.robot.ID() == e.ID() {
			s.arena.warnings.Forget(slot.robot.Name)
			return
		}
	}
}

func (s *controlSystem) Update(float32) {
	a := s.arena
	for _, slot := range a.robots {
		if _, ok := a.byID[slot.robot.ID()]; !ok || !slot.robot.Alive() {
			continue
		}
		a.act(slot)
	}
}

// motionSystem moves every entity and registers the bullets robots fire
type motionSystem struct {
	arena *Arena
}

func (s *motionSystem) Priority() int { return priorityMotion }

func (s *motionSystem) Remove(ecs.BasicEntity) {}

func (s *motionSystem) Update(float32) {
	a := s.arena
	// Bullets fired this tick are appended and moved in the same pass
	for i := 0; i < len(a.entities); i++ {
		e := a.entities[i]
		e.Update(a.step)

		robot, ok := e.(*entity.Robot)
		if !ok {
			continue
		}
		for _, b := range robot.TakeFired() {
			a.addEntity(b)
			a.bus.Publish(event.NewBulletEvent(a, a.simTime, b.ID(), robot.ID(), b.Position()))
		}
	}
	a.dropDestroyed()
}

// collisionSystem rebuilds the indexes and separates overlapping bodies
type collisionSystem struct {
	arena *Arena
}

func (s *collisionSystem) Priority() int { return priorityCollision }

func (s *collisionSystem) Remove(ecs.BasicEntity) {}

func (s *collisionSystem) Update(float32) {
	a := s.arena
	a.rebuildIndexes()

	for _, c := range collision.ResolveAll(a.entityTree) {
		a.bus.Publish(event.NewCollisionEvent(a, a.simTime, c.A.ID(), c.B.ID(), c.Translation))
		a.checkCoinClaim(c)
	}
}

// clashSystem lets bullets of different shooters annihilate each other
type clashSystem struct {
	arena *Arena
}

func (s *clashSystem) Priority() int { return priorityClash }

func (s *clashSystem) Remove(ecs.BasicEntity) {}

func (s *clashSystem) Update(float32) {
	s.arena.resolveBulletClashes()
}

// cleanupSystem removes what left the arena and reports dead robots
type cleanupSystem struct {
	arena *Arena
}

func (s *cleanupSystem) Priority() int { return priorityCleanup }

func (s *cleanupSystem) Remove(ecs.BasicEntity) {}

func (s *cleanupSystem) Update(float32) {
	a := s.arena
	a.clearOffscreen()
	a.dropDestroyed()
	a.reportDeaths()
}

func entityRect(e entity.Entity) physics.Rect {
	return e.Rect()
}

func entityCenter(e entity.Entity) physics.Vector2D {
	return e.Rect().Center()
}

func wallRect(w *entity.Wall) physics.Rect {
	return w.Rect()
}

func wallCenter(w *entity.Wall) physics.Vector2D {
	return w.Rect().Center()
}

func (a *Arena) rebuildIndexes() {
	cfg := a.cfg.Quadtree
	a.entityTree = spatial.FromObjectsPadded(a.entities, entityRect, entityCenter, cfg.Spatial(), cfg.Padding)

	var walls []*entity.Wall
	for _, e := range a.entities {
		if w, ok := e.(*entity.Wall); ok && w.Alive() {
			walls = append(walls, w)
		}
	}
	a.wallTree = spatial.FromObjectsPadded(walls, wallRect, wallCenter, cfg.Spatial(), cfg.Padding)
}

// act runs one guarded controller call and applies the sanitised result
func (a *Arena) act(slot *robotSlot) {
	robot := slot.robot
	action, err := slot.guard.Act(a.ctx, a.observe(robot))
	if err != nil {
		// The guard has logged the failure; the robot idles this tick
		return
	}

	action, warnings := validation.SanitizeAction(action)
	for _, w := range warnings {
		if a.warnings.Allow(robot.Name, a.simTime) {
			a.logger.Warn(a.ctx, "invalid controller action", "robot", robot.Name, "reason", w)
		}
	}
	a.apply(robot, action)
}

// apply translates an action into robot inputs. Later steering intents
// override the raw powers set before them.
func (a *Arena) apply(robot *entity.Robot, action control.Action) {
	dt := a.step

	robot.SetMovePower(action.MovePower)
	robot.SetTurnPower(action.TurnPower)
	robot.SetTurretTurnPower(action.TurretTurnPower)

	if t := action.TurnToward; t != nil {
		if t.Angle != nil {
			robot.TurnToward(*t.Angle, dt)
		} else if t.Point != nil {
			robot.TurnTowardPoint(*t.Point, dt)
		}
	}

	if action.MoveToward != nil {
		if path, ok := a.pathfind(robot, *action.MoveToward); ok {
			robot.MoveToward(path[0], dt)
		}
	}

	if t := action.AimToward; t != nil {
		if t.Angle != nil {
			robot.AimToward(*t.Angle, dt)
		} else if t.Point != nil {
			robot.AimTowardPoint(*t.Point, dt)
		}
	}

	robot.RequestShot(action.Shoot)
}

// shrink pulls the boundary walls inward at the configured rate until the
// arena reaches its minimum half size
func (a *Arena) shrink() {
	rate := a.cfg.Simulation.ShrinkRate
	if rate <= 0 {
		return
	}

	limit := math.Min(a.originalSize.X, a.originalSize.Y)/2 - a.cfg.Simulation.MinArenaHalfSize
	amount := math.Max(math.Min(a.simTime*rate, limit), 0)
	if amount == a.origin.X {
		return
	}

	a.origin = physics.Vector2D{X: amount, Y: amount}
	a.size = a.originalSize.Sub(physics.Vector2D{X: 2 * amount, Y: 2 * amount})
	a.setBoundaryWalls()
}

// setBoundaryWalls replaces the four walls that enclose the playable area.
// Each wall overlaps its neighbours by the wall thickness at the corners.
func (a *Arena) setBoundaryWalls() {
	for _, w := range a.boundary {
		if w.Alive() {
			w.Destroy()
		}
	}

	t := a.cfg.Simulation.WallThickness
	o, w, h := a.origin, a.size.X, a.size.Y
	horizontal := physics.Vector2D{X: w + 2*t, Y: t}
	vertical := physics.Vector2D{X: t, Y: h + 2*t}

	a.boundary = []*entity.Wall{
		entity.NewWall(o.Add(physics.Vector2D{X: w / 2, Y: -t/2 - 1}), horizontal, 0, a.clearance),
		entity.NewWall(o.Add(physics.Vector2D{X: w / 2, Y: h + t/2 + 1}), horizontal, 0, a.clearance),
		entity.NewWall(o.Add(physics.Vector2D{X: -t/2 - 1, Y: h / 2}), vertical, 0, a.clearance),
		entity.NewWall(o.Add(physics.Vector2D{X: w + t/2 + 1, Y: h / 2}), vertical, 0, a.clearance),
	}
	for _, wall := range a.boundary {
		a.addEntity(wall)
	}
}

// ensureCoin keeps exactly one coin fully inside the arena
func (a *Arena) ensureCoin() {
	bounds := a.rect()
	if a.coin != nil && a.coin.Alive() {
		if bounds.ContainsRect(a.coin.Rect()) {
			return
		}
		a.coin.Destroy()
	}

	radius := a.cfg.Coin.Radius
	position := a.coinPosition(bounds, radius)
	a.coin = entity.NewCoin(position, radius)
	a.coinClaimed = false
	a.addEntity(a.coin)

	a.bus.Publish(event.NewCoinEvent(event.CoinSpawned, a, a.simTime, a.coin.ID(), 0, position))
	a.logger.Debug(a.ctx, "coin spawned", "x", position.X, "y", position.Y)
}

// coinPosition picks a random graph node the coin fits around, or a random
// point clear of the boundary when there is none
func (a *Arena) coinPosition(bounds physics.Rect, radius float64) physics.Vector2D {
	var candidates []physics.Vector2D
	for _, node := range a.availableNodes {
		if bounds.ContainsRect(physics.RectAround(node, radius)) {
			candidates = append(candidates, node)
		}
	}
	if len(candidates) > 0 {
		return candidates[a.rng.IntN(len(candidates))]
	}

	offset := a.clearance.X + radius
	span := a.size.Sub(physics.Vector2D{X: 2 * offset, Y: 2 * offset})
	if span.X <= 0 || span.Y <= 0 {
		return bounds.Center()
	}
	return a.origin.Add(physics.Vector2D{
		X: offset + a.rng.Float64()*span.X,
		Y: offset + a.rng.Float64()*span.Y,
	})
}

// checkCoinClaim publishes the pickup of the current coin once
func (a *Arena) checkCoinClaim(c collision.Contact) {
	if a.coin == nil || a.coinClaimed || a.coin.Alive() {
		return
	}

	var other collision.Collider
	switch {
	case c.A == collision.Collider(a.coin):
		other = c.B
	case c.B == collision.Collider(a.coin):
		other = c.A
	default:
		return
	}
	robot, ok := other.(*entity.Robot)
	if !ok {
		return
	}

	a.coinClaimed = true
	a.bus.Publish(event.NewCoinEvent(event.CoinCollected, a, a.simTime, a.coin.ID(), robot.ID(), a.coin.Position()))
	a.logger.Debug(a.ctx, "coin collected", "robot", robot.Name, "coins", robot.Coins())
}

// resolveBulletClashes fades old clash effects, then destroys every group
// of bullets from different shooters that came within the clash radius of
// each other
func (a *Arena) resolveBulletClashes() {
	kept := a.clashes[:0]
	for _, c := range a.clashes {
		c.Remaining -= a.step
		if c.Remaining > 0 {
			kept = append(kept, c)
		}
	}
	a.clashes = kept

	radius := a.cfg.Simulation.BulletClashRadius
	if radius <= 0 || a.entityTree == nil {
		return
	}

	for _, e := range a.entities {
		b, ok := e.(*entity.Bullet)
		if !ok || !b.Alive() {
			continue
		}

		center := b.Position()
		sum := center
		ids := []uint64{b.ID()}
		for _, found := range a.entityTree.Query(physics.RectAround(center, radius)) {
			other, ok := found.(*entity.Bullet)
			if !ok || other == b || !other.Alive() || other.Shooter() == b.Shooter() {
				continue
			}
			if other.Position().Distance(center) > radius {
				continue
			}
			other.Destroy()
			sum = sum.Add(other.Position())
			ids = append(ids, other.ID())
		}
		if len(ids) == 1 {
			continue
		}

		b.Destroy()
		point := sum.Scale(1 / float64(len(ids)))
		a.clashes = append(a.clashes, Clash{Position: point, Remaining: a.cfg.Simulation.BulletClashEffectTime})
		a.bus.Publish(event.NewClashEvent(a, a.simTime, ids, point))
	}
}

// clearOffscreen destroys every dynamic entity that left the arena
func (a *Arena) clearOffscreen() {
	bounds := a.rect()
	for _, e := range a.entities {
		if e.IsStatic() || !e.Alive() {
			continue
		}
		if !bounds.Intersects(e.Rect()) {
			e.Destroy()
		}
	}
}

// reportDeaths publishes each robot's destruction once
func (a *Arena) reportDeaths() {
	for _, slot := range a.robots {
		if slot.reported || slot.robot.Alive() {
			continue
		}
		slot.reported = true
		r := slot.robot
		a.bus.Publish(event.NewRobotEvent(event.RobotDestroyed, a, a.simTime, r.ID(), r.Name, r.Position()))
		a.logger.Info(a.ctx, "robot destroyed",
			"robot", r.Name,
			"time", a.simTime,
			"coins", r.Coins(),
		)
	}
}
