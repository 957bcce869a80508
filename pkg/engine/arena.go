// pkg/engine/arena.go

// Package engine drives a match. An Arena owns every entity, rebuilds the
// spatial indexes each tick and answers the queries controllers are built
// on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-tankwars/pkg/config"
	"github.com/opd-ai/go-tankwars/pkg/control"
	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/event"
	"github.com/opd-ai/go-tankwars/pkg/logging"
	"github.com/opd-ai/go-tankwars/pkg/navigation"
	"github.com/opd-ai/go-tankwars/pkg/physics"
	"github.com/opd-ai/go-tankwars/pkg/spatial"
	"github.com/opd-ai/go-tankwars/pkg/validation"
)

// ErrNotEnoughSpawns is returned when more robots join than the map has
// spawn points for
var ErrNotEnoughSpawns = errors.New("not enough spawn points")

const (
	// pathWaypointReached prunes waypoints the robot is already standing on
	pathWaypointReached = 1.0
	warningsPerWindow   = 3
	warningWindow       = 5.0
)

// Clash is the visual trace left where bullets annihilated each other
type Clash struct {
	Position  physics.Vector2D
	Remaining float64
}

type robotSlot struct {
	robot    *entity.Robot
	guard    *control.Guard
	reported bool
}

// Option customises a new Arena
type Option func(*Arena)

// WithLogger sets the arena logger
func WithLogger(logger *logging.Logger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}

// WithEventBus publishes arena events on bus
func WithEventBus(bus *event.Bus) Option {
	return func(a *Arena) {
		a.bus = bus
	}
}

// WithRand sets the random source for coin placement
func WithRand(rng *rand.Rand) Option {
	return func(a *Arena) {
		a.rng = rng
	}
}

// WithMatchID tags every log record of the arena with id
func WithMatchID(id string) Option {
	return func(a *Arena) {
		a.matchID = id
	}
}

// Arena is a rectangular play area surrounded by boundary walls. All
// mutation happens inside Update and the Add/Remove methods; the exported
// queries may be called from other goroutines between ticks.
type Arena struct {
	cfg     *config.ArenaConfig
	logger  *logging.Logger
	ctx     context.Context
	matchID string
	bus     *event.Bus
	rng     *rand.Rand
	world   *ecs.World
	mu      sync.RWMutex

	warnings *validation.RateLimiter

	originalSize physics.Vector2D
	origin       physics.Vector2D
	size         physics.Vector2D
	clearance    physics.Vector2D
	boundary     []*entity.Wall

	entities   []entity.Entity
	byID       map[uint64]entity.Entity
	entityTree *spatial.Quadtree[entity.Entity]
	wallTree   *spatial.Quadtree[*entity.Wall]

	graph          *navigation.Graph
	availableNodes []physics.Vector2D

	coin        *entity.Coin
	coinClaimed bool
	robots      []*robotSlot
	spawns      []physics.Vector2D
	clashes     []Clash

	simTime float64
	step    float64
	ticks   uint64
	started bool
}

// NewArena creates an empty arena of the given size with its boundary walls
// in place. Obstacles may be added before PreparePathGraph is called.
func NewArena(cfg *config.ArenaConfig, size physics.Vector2D, opts ...Option) *Arena {
	a := &Arena{
		cfg:          cfg,
		logger:       logging.Discard(),
		bus:          event.NewEventBus(),
		world:        &ecs.World{},
		warnings:     validation.NewRateLimiter(warningsPerWindow, warningWindow),
		originalSize: size,
		size:         size,
		clearance:    physics.Vector2D{X: cfg.Robot.HitboxWidth / 2, Y: cfg.Robot.HitboxWidth / 2},
		byID:         make(map[uint64]entity.Entity),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if a.matchID == "" {
		a.matchID = logging.GenerateMatchID()
	}
	a.ctx = logging.WithMatchID(context.Background(), a.matchID)
	a.logger = a.logger.Component("arena")

	a.setBoundaryWalls()
	a.addSystems()
	return a
}

// NewArenaFromMap creates an arena from a validated map layout and prepares
// its path graph
func NewArenaFromMap(cfg *config.ArenaConfig, m *config.MapConfig, opts ...Option) (*Arena, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	a := NewArena(cfg, m.Size.Vector(), opts...)
	for _, w := range m.Walls {
		a.AddEntity(entity.NewWall(w.Position.Vector(), w.Size.Vector(), w.Radians(), a.clearance))
	}
	a.spawns = m.SpawnPoints()
	a.PreparePathGraph()
	return a, nil
}

// MatchID returns the identifier attached to the arena's log records
func (a *Arena) MatchID() string {
	return a.matchID
}

// EventBus returns the bus arena events are published on. Handlers run
// inside Update and must not call back into the arena.
func (a *Arena) EventBus() *event.Bus {
	return a.bus
}

// Config returns the arena configuration
func (a *Arena) Config() *config.ArenaConfig {
	return a.cfg
}

func (a *Arena) clock() float64 {
	return a.simTime
}

// AddEntity registers e with the arena. Adding the same entity twice is a
// programming error and panics.
func (a *Arena) AddEntity(e entity.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addEntity(e)
}

func (a *Arena) addEntity(e entity.Entity) {
	if _, ok := a.byID[e.ID()]; ok {
		panic(fmt.Sprintf("engine: %s %d already in arena", e.Kind(), e.ID()))
	}
	if r, ok := e.(*entity.Robot); ok {
		r.SetClock(a.clock)
	}
	a.entities = append(a.entities, e)
	a.byID[e.ID()] = e
}

// RemoveEntity unregisters e. Removing an entity that is not in the arena
// panics.
func (a *Arena) RemoveEntity(e entity.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeEntity(e)
}

func (a *Arena) removeEntity(e entity.Entity) {
	if _, ok := a.byID[e.ID()]; !ok {
		panic(fmt.Sprintf("engine: %s %d not in arena", e.Kind(), e.ID()))
	}
	for i, other := range a.entities {
		if other.ID() == e.ID() {
			a.entities = append(a.entities[:i], a.entities[i+1:]...)
			break
		}
	}
	delete(a.byID, e.ID())
	a.world.RemoveEntity(*e.GetBasicEntity())
}

// dropDestroyed removes every destroyed entity, keeping the order of the rest
func (a *Arena) dropDestroyed() {
	kept := a.entities[:0]
	var dropped []entity.Entity
	for _, e := range a.entities {
		if e.Alive() {
			kept = append(kept, e)
			continue
		}
		dropped = append(dropped, e)
	}
	for i := len(kept); i < len(a.entities); i++ {
		a.entities[i] = nil
	}
	a.entities = kept

	for _, e := range dropped {
		delete(a.byID, e.ID())
		a.world.RemoveEntity(*e.GetBasicEntity())
	}
}

// Entities returns a snapshot of the registered entities in insertion order
func (a *Arena) Entities() []entity.Entity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]entity.Entity(nil), a.entities...)
}

// AddRobot creates a robot driven by controller. The robot is placed by
// SpawnRobots.
func (a *Arena) AddRobot(name string, controller control.Controller) (*entity.Robot, error) {
	name, err := validation.ValidateRobotName(name)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, slot := range a.robots {
		if slot.robot.Name == name {
			return nil, fmt.Errorf("robot %q already in arena", name)
		}
	}

	robot := entity.NewRobot(name, a.cfg.Robot, a.cfg.Bullet)
	guard := control.NewGuard(name, controller, control.GuardSettings{
		MaxConsecutiveFailures: a.cfg.Controller.MaxConsecutiveFailures,
		OpenTimeout:            a.cfg.Controller.OpenTimeout,
	}, a.logger.Component("control"))

	a.addEntity(robot)
	a.robots = append(a.robots, &robotSlot{robot: robot, guard: guard})
	return robot, nil
}

// Robots returns every robot that joined the arena, destroyed ones included
func (a *Arena) Robots() []*entity.Robot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*entity.Robot, len(a.robots))
	for i, slot := range a.robots {
		out[i] = slot.robot
	}
	return out
}

// SetSpawns replaces the spawn points used by SpawnRobots
func (a *Arena) SetSpawns(spawns []physics.Vector2D) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spawns = append([]physics.Vector2D(nil), spawns...)
}

// SpawnRobots moves every robot to a distinct spawn point chosen with rng
func (a *Arena) SpawnRobots(rng *rand.Rand) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.robots) > len(a.spawns) {
		return fmt.Errorf("%w: %d robots, %d spawns", ErrNotEnoughSpawns, len(a.robots), len(a.spawns))
	}

	order := rng.Perm(len(a.spawns))
	for i, slot := range a.robots {
		slot.robot.SetPosition(a.spawns[order[i]])
		a.bus.Publish(event.NewRobotEvent(event.RobotSpawned, a, a.simTime,
			slot.robot.ID(), slot.robot.Name, slot.robot.Position()))
		a.logger.Debug(a.ctx, "robot spawned",
			"robot", slot.robot.Name,
			"x", slot.robot.Position().X,
			"y", slot.robot.Position().Y,
		)
	}
	return nil
}

// PreparePathGraph builds the navigation graph from the walls currently in
// the arena. Walls added afterwards are not pathed around.
func (a *Arena) PreparePathGraph() {
	a.mu.Lock()
	defer a.mu.Unlock()

	var obstacles []navigation.Obstacle
	for _, e := range a.entities {
		if w, ok := e.(*entity.Wall); ok && w.Alive() {
			obstacles = append(obstacles, navigation.Obstacle{
				Hitbox:   w.AbsoluteHitbox(),
				Expanded: w.PathfindingHitbox(),
			})
		}
	}
	a.graph = navigation.NewGraph(obstacles, a.cfg.Navigation.Graph(a.cfg.Robot))
	a.availableNodes = a.graph.AvailableNodes(a.rect())
	a.rebuildIndexes()

	a.logger.Debug(a.ctx, "path graph prepared",
		"obstacles", len(obstacles),
		"nodes", len(a.graph.Nodes()),
		"available", len(a.availableNodes),
	)
}

// Graph returns the navigation graph, or nil before PreparePathGraph
func (a *Arena) Graph() *navigation.Graph {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph
}

// Update advances the simulation by dt seconds, capped at the configured
// maximum step
func (a *Arena) Update(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.graph == nil {
		panic("engine: PreparePathGraph must be called before Update")
	}

	a.step = math.Min(math.Max(dt, 0), a.cfg.Simulation.MaxStep())
	a.simTime += a.step
	a.world.Update(float32(a.step))
	a.ticks++
}

// TotalSimTime returns the simulated seconds since the arena was created
func (a *Arena) TotalSimTime() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.simTime
}

// Ticks returns the number of completed updates
func (a *Arena) Ticks() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ticks
}

// Rect returns the current playable area
func (a *Arena) Rect() physics.Rect {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rect()
}

func (a *Arena) rect() physics.Rect {
	return physics.NewRect(a.origin.X, a.origin.Y, a.size.X, a.size.Y)
}

// Coin returns the position of the live coin
func (a *Arena) Coin() (physics.Vector2D, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.coin == nil || !a.coin.Alive() {
		return physics.Vector2D{}, false
	}
	return a.coin.Position(), true
}

// Clashes returns the bullet clash effects still fading out
func (a *Arena) Clashes() []Clash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Clash(nil), a.clashes...)
}

// Running reports whether the match continues: the time limit is not yet
// reached and at least two robots are alive. A non-positive limit never
// expires.
func (a *Arena) Running(timeLimit float64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if timeLimit > 0 && a.simTime >= timeLimit {
		return false
	}
	alive := 0
	for _, slot := range a.robots {
		if slot.robot.Health() > 0 {
			alive++
		}
	}
	return alive >= 2
}
