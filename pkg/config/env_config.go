// pkg/config/env_config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables understood by ApplyEnvironmentOverrides
const (
	EnvQuadtreeThreshold     = "TANKWARS_QUADTREE_THRESHOLD"
	EnvQuadtreeMaxDepth      = "TANKWARS_QUADTREE_MAX_DEPTH"
	EnvQuadtreePadding       = "TANKWARS_QUADTREE_PADDING"
	EnvFrameRate             = "TANKWARS_FRAME_RATE"
	EnvTimeLimit             = "TANKWARS_TIME_LIMIT"
	EnvShrinkRate            = "TANKWARS_SHRINK_RATE"
	EnvUsePathfinding        = "TANKWARS_USE_PATHFINDING"
	EnvMaxVisibleNodes       = "TANKWARS_MAX_VISIBLE_NODES"
	EnvControllerOpenTimeout = "TANKWARS_CONTROLLER_OPEN_TIMEOUT"
)

// ApplyEnvironmentOverrides replaces config values with any TANKWARS_*
// variables set in the environment and validates the result. Unparseable
// values are ignored.
func ApplyEnvironmentOverrides(config *ArenaConfig) error {
	config.Quadtree.Threshold = getEnvAsIntOrDefault(EnvQuadtreeThreshold, config.Quadtree.Threshold)
	config.Quadtree.MaxDepth = getEnvAsIntOrDefault(EnvQuadtreeMaxDepth, config.Quadtree.MaxDepth)
	config.Quadtree.Padding = getEnvAsFloatOrDefault(EnvQuadtreePadding, config.Quadtree.Padding)

	config.Simulation.FrameRate = getEnvAsFloatOrDefault(EnvFrameRate, config.Simulation.FrameRate)
	config.Simulation.TimeLimit = getEnvAsFloatOrDefault(EnvTimeLimit, config.Simulation.TimeLimit)
	config.Simulation.ShrinkRate = getEnvAsFloatOrDefault(EnvShrinkRate, config.Simulation.ShrinkRate)
	config.Simulation.UsePathfinding = getEnvAsBoolOrDefault(EnvUsePathfinding, config.Simulation.UsePathfinding)

	config.Navigation.MaxVisibleNodes = getEnvAsIntOrDefault(EnvMaxVisibleNodes, config.Navigation.MaxVisibleNodes)

	config.Controller.OpenTimeout = getEnvAsDurationOrDefault(EnvControllerOpenTimeout, config.Controller.OpenTimeout)

	return config.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
