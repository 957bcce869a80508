// pkg/validation/validation.go

// Package validation checks robot names, map layouts and controller
// actions before they reach the simulation.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

const (
	MaxRobotNameLen = 32
	// MaxArenaSide bounds arena width and height
	MaxArenaSide = 1e6
)

var validRobotNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()]+$`)

// ValidateRobotName trims and checks a robot name
func ValidateRobotName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("robot name cannot be empty")
	}
	if len(name) > MaxRobotNameLen {
		return "", fmt.Errorf("robot name too long: %d characters (max %d)", len(name), MaxRobotNameLen)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("robot name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("robot name cannot be only whitespace")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("robot name contains control characters")
		}
	}
	if !validRobotNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("robot name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, dots and parentheses allowed)")
	}
	return trimmed, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ValidateArenaSize checks the playable area dimensions
func ValidateArenaSize(size physics.Vector2D) error {
	if !finite(size.X, size.Y) {
		return fmt.Errorf("arena size must be finite: %v", size)
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("arena size must be positive: %v", size)
	}
	if size.X > MaxArenaSide || size.Y > MaxArenaSide {
		return fmt.Errorf("arena size too large: %v (max %g per side)", size, MaxArenaSide)
	}
	return nil
}

// ValidateWall checks the placement of the index-th interior wall
func ValidateWall(index int, position, size physics.Vector2D, rotation float64) error {
	if !finite(position.X, position.Y, size.X, size.Y, rotation) {
		return fmt.Errorf("wall %d has non-finite values", index)
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("wall %d size must be positive: %v", index, size)
	}
	return nil
}

// ValidateSpawn checks that the index-th spawn point lies strictly inside
// an arena of the given size
func ValidateSpawn(index int, spawn, arenaSize physics.Vector2D) error {
	if !finite(spawn.X, spawn.Y) {
		return fmt.Errorf("spawn %d has non-finite values", index)
	}
	if spawn.X <= 0 || spawn.Y <= 0 || spawn.X >= arenaSize.X || spawn.Y >= arenaSize.Y {
		return fmt.Errorf("spawn %d at %v lies outside the arena", index, spawn)
	}
	return nil
}
