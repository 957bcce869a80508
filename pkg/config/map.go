// pkg/config/map.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/opd-ai/go-tankwars/pkg/physics"
	"github.com/opd-ai/go-tankwars/pkg/validation"
)

// EnvMapPath names a map file to use when none is given on the command line
const EnvMapPath = "TANKWARS_MAP"

// Size is a width and height pair
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Vector returns the size as a vector
func (s Size) Vector() physics.Vector2D {
	return physics.Vector2D{X: s.Width, Y: s.Height}
}

// Point is a position in arena coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector returns the point as a vector
func (p Point) Vector() physics.Vector2D {
	return physics.Vector2D{X: p.X, Y: p.Y}
}

// WallConfig places one interior wall by its centre
type WallConfig struct {
	Position Point `json:"position"`
	Size     Size  `json:"size"`
	// Rotation is in degrees
	Rotation float64 `json:"rotation"`
}

// Radians returns the wall rotation in radians
func (w WallConfig) Radians() float64 {
	return w.Rotation * math.Pi / 180
}

// MapConfig is an arena layout. Positions are relative to the arena's
// top-left corner.
type MapConfig struct {
	Size   Size         `json:"size"`
	Walls  []WallConfig `json:"walls"`
	Spawns []Point      `json:"spawns"`
}

// Validate checks the arena size, every wall and every spawn
func (m *MapConfig) Validate() error {
	size := m.Size.Vector()
	if err := validation.ValidateArenaSize(size); err != nil {
		return err
	}
	for i, w := range m.Walls {
		if err := validation.ValidateWall(i, w.Position.Vector(), w.Size.Vector(), w.Rotation); err != nil {
			return err
		}
	}
	for i, s := range m.Spawns {
		if err := validation.ValidateSpawn(i, s.Vector(), size); err != nil {
			return err
		}
	}
	return nil
}

// SpawnPoints returns the spawn positions as vectors
func (m *MapConfig) SpawnPoints() []physics.Vector2D {
	out := make([]physics.Vector2D, len(m.Spawns))
	for i, s := range m.Spawns {
		out[i] = s.Vector()
	}
	return out
}

// LoadMap reads and validates a map layout
func LoadMap(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var m MapConfig
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map file: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map %s: %w", path, err)
	}
	return &m, nil
}

// MapPathFromEnv returns the TANKWARS_MAP path, or fallback when unset
func MapPathFromEnv(fallback string) string {
	return getEnvOrDefault(EnvMapPath, fallback)
}

// DefaultMap returns an empty square arena with four spawns near the corners
func DefaultMap() *MapConfig {
	return &MapConfig{
		Size: Size{Width: 1600, Height: 1600},
		Spawns: []Point{
			{X: 200, Y: 200},
			{X: 1400, Y: 1400},
			{X: 1400, Y: 200},
			{X: 200, Y: 1400},
		},
	}
}
