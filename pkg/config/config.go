// pkg/config/config.go

// Package config loads arena settings and map layouts from JSON files and
// the environment.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/opd-ai/go-tankwars/pkg/entity"
	"github.com/opd-ai/go-tankwars/pkg/navigation"
	"github.com/opd-ai/go-tankwars/pkg/spatial"
)

// ArenaConfig contains every tunable of a match
type ArenaConfig struct {
	Quadtree   QuadtreeConfig     `json:"quadtree"`
	Navigation NavigationConfig   `json:"navigation"`
	Simulation SimulationConfig   `json:"simulation"`
	Robot      entity.RobotStats  `json:"robot"`
	Bullet     entity.BulletStats `json:"bullet"`
	Coin       CoinConfig         `json:"coin"`
	Controller ControllerConfig   `json:"controller"`
}

// QuadtreeConfig shapes the per-tick entity and wall indexes
type QuadtreeConfig struct {
	Threshold int     `json:"threshold"`
	MaxDepth  int     `json:"maxDepth"`
	Padding   float64 `json:"padding"`
}

// Spatial returns the quadtree split parameters
func (q QuadtreeConfig) Spatial() spatial.Config {
	return spatial.Config{Threshold: q.Threshold, MaxDepth: q.MaxDepth}
}

// NavigationConfig tunes the visibility graph
type NavigationConfig struct {
	MaxVisibleNodes  int     `json:"maxVisibleNodes"`
	NodeEpsilon      float64 `json:"nodeEpsilon"`
	EdgeTolerance    float64 `json:"edgeTolerance"`
	RTreeMinChildren int     `json:"rtreeMinChildren"`
	RTreeMaxChildren int     `json:"rtreeMaxChildren"`
}

// Graph returns the graph configuration for robots with the given stats
func (n NavigationConfig) Graph(robot entity.RobotStats) navigation.Config {
	return navigation.Config{
		MoveSpeed:        robot.MoveSpeed,
		TurnSpeed:        robot.TurnSpeed,
		MaxVisibleNodes:  n.MaxVisibleNodes,
		NodeEpsilon:      n.NodeEpsilon,
		EdgeTolerance:    n.EdgeTolerance,
		RTreeMinChildren: n.RTreeMinChildren,
		RTreeMaxChildren: n.RTreeMaxChildren,
	}
}

// SimulationConfig contains the tick loop settings. Times are in seconds.
type SimulationConfig struct {
	FrameRate     float64 `json:"frameRate"`
	MaxStepFrames float64 `json:"maxStepFrames"`
	// TimeLimit of zero runs until one robot is left
	TimeLimit float64 `json:"timeLimit"`
	// ShrinkRate moves every boundary wall inward by this many units per second
	ShrinkRate            float64 `json:"shrinkRate"`
	MinArenaHalfSize      float64 `json:"minArenaHalfSize"`
	WallThickness         float64 `json:"wallThickness"`
	UsePathfinding        bool    `json:"usePathfinding"`
	BulletClashRadius     float64 `json:"bulletClashRadius"`
	BulletClashEffectTime float64 `json:"bulletClashEffectTime"`
	NearbyBulletRadius    float64 `json:"nearbyBulletRadius"`
}

// MaxStep is the longest time step a single tick may simulate
func (s SimulationConfig) MaxStep() float64 {
	return s.MaxStepFrames / s.FrameRate
}

// CoinConfig contains coin settings
type CoinConfig struct {
	Radius float64 `json:"radius"`
}

// ControllerConfig configures the circuit breaker around each controller
type ControllerConfig struct {
	MaxConsecutiveFailures int           `json:"maxConsecutiveFailures"`
	OpenTimeout            time.Duration `json:"openTimeout"`
}

// ValidationError reports an invalid configuration field
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// LoadConfig loads a configuration from a file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*ArenaConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *ArenaConfig, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: nil config")
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the standard arena configuration
func DefaultConfig() *ArenaConfig {
	return &ArenaConfig{
		Quadtree: QuadtreeConfig{
			Threshold: 8,
			MaxDepth:  8,
			Padding:   10,
		},
		Navigation: NavigationConfig{
			MaxVisibleNodes:  8,
			NodeEpsilon:      1e-4,
			EdgeTolerance:    1e-4,
			RTreeMinChildren: 2,
			RTreeMaxChildren: 8,
		},
		Simulation: SimulationConfig{
			FrameRate:             60,
			MaxStepFrames:         4,
			MinArenaHalfSize:      256,
			WallThickness:         100,
			UsePathfinding:        true,
			BulletClashRadius:     16,
			BulletClashEffectTime: 0.3,
			NearbyBulletRadius:    256,
		},
		Robot:  entity.DefaultRobotStats(),
		Bullet: entity.DefaultBulletStats(),
		Coin: CoinConfig{
			Radius: entity.DefaultCoinRadius,
		},
		Controller: ControllerConfig{
			MaxConsecutiveFailures: 5,
			OpenTimeout:            5 * time.Second,
		},
	}
}

// Validate checks that every field holds a usable value
func (c *ArenaConfig) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"quadtree.threshold", float64(c.Quadtree.Threshold)},
		{"quadtree.maxDepth", float64(c.Quadtree.MaxDepth)},
		{"navigation.maxVisibleNodes", float64(c.Navigation.MaxVisibleNodes)},
		{"navigation.rtreeMinChildren", float64(c.Navigation.RTreeMinChildren)},
		{"simulation.frameRate", c.Simulation.FrameRate},
		{"simulation.maxStepFrames", c.Simulation.MaxStepFrames},
		{"simulation.wallThickness", c.Simulation.WallThickness},
		{"robot.maxHealth", c.Robot.MaxHealth},
		{"robot.moveSpeed", c.Robot.MoveSpeed},
		{"robot.turnSpeed", c.Robot.TurnSpeed},
		{"robot.turretTurnSpeed", c.Robot.TurretTurnSpeed},
		{"robot.hitboxLength", c.Robot.HitboxLength},
		{"robot.hitboxWidth", c.Robot.HitboxWidth},
		{"bullet.speed", c.Bullet.Speed},
		{"bullet.radius", c.Bullet.Radius},
		{"bullet.lifetime", c.Bullet.Lifetime},
		{"coin.radius", c.Coin.Radius},
		{"controller.maxConsecutiveFailures", float64(c.Controller.MaxConsecutiveFailures)},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
			return &ValidationError{Field: p.field, Value: p.value, Message: "must be a positive number"}
		}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"quadtree.padding", c.Quadtree.Padding},
		{"navigation.nodeEpsilon", c.Navigation.NodeEpsilon},
		{"navigation.edgeTolerance", c.Navigation.EdgeTolerance},
		{"simulation.timeLimit", c.Simulation.TimeLimit},
		{"simulation.shrinkRate", c.Simulation.ShrinkRate},
		{"simulation.minArenaHalfSize", c.Simulation.MinArenaHalfSize},
		{"simulation.bulletClashRadius", c.Simulation.BulletClashRadius},
		{"simulation.bulletClashEffectTime", c.Simulation.BulletClashEffectTime},
		{"simulation.nearbyBulletRadius", c.Simulation.NearbyBulletRadius},
		{"robot.shotCooldown", c.Robot.ShotCooldown},
		{"robot.turretLength", c.Robot.TurretLength},
		{"bullet.damage", c.Bullet.Damage},
		{"bullet.trailLength", c.Bullet.TrailLength},
	}
	for _, p := range nonNegative {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value < 0 {
			return &ValidationError{Field: p.field, Value: p.value, Message: "must be a non-negative number"}
		}
	}

	if c.Navigation.RTreeMaxChildren < 2*c.Navigation.RTreeMinChildren {
		return &ValidationError{
			Field:   "navigation.rtreeMaxChildren",
			Value:   c.Navigation.RTreeMaxChildren,
			Message: "must be at least twice rtreeMinChildren",
		}
	}
	if c.Navigation.EdgeTolerance >= 0.5 {
		return &ValidationError{Field: "navigation.edgeTolerance", Value: c.Navigation.EdgeTolerance, Message: "must be below 0.5"}
	}
	if c.Controller.OpenTimeout <= 0 {
		return &ValidationError{Field: "controller.openTimeout", Value: c.Controller.OpenTimeout, Message: "must be positive"}
	}
	return nil
}
