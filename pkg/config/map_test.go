// pkg/config/map_test.go
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMap(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMap(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeMap(t, `{
			"size": {"width": 1200, "height": 900},
			"walls": [{"position": {"x": 600, "y": 450}, "size": {"width": 200, "height": 40}, "rotation": 90}],
			"spawns": [{"x": 100, "y": 100}, {"x": 1100, "y": 800}]
		}`)
		m, err := LoadMap(path)
		if err != nil {
			t.Fatalf("LoadMap() error = %v", err)
		}
		if len(m.Walls) != 1 || len(m.Spawns) != 2 {
			t.Fatalf("LoadMap() = %+v, expected 1 wall and 2 spawns", m)
		}
		if got := m.Walls[0].Radians(); math.Abs(got-math.Pi/2) > 1e-12 {
			t.Errorf("Radians() = %v, expected pi/2", got)
		}
		if got := m.SpawnPoints()[1]; got.X != 1100 || got.Y != 800 {
			t.Errorf("SpawnPoints()[1] = %v, expected (1100, 800)", got)
		}
	})

	tests := []struct {
		name        string
		contents    string
		errContains string
	}{
		{"bad_json", `{"size": `, "failed to parse map file"},
		{"zero_size", `{"size": {"width": 0, "height": 10}}`, "arena size must be positive"},
		{"flat_wall", `{"size": {"width": 100, "height": 100}, "walls": [{"position": {"x": 1, "y": 1}, "size": {"width": 0, "height": 1}}]}`, "wall 0"},
		{"spawn_outside", `{"size": {"width": 100, "height": 100}, "spawns": [{"x": 150, "y": 10}]}`, "spawn 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMap(writeMap(t, tt.contents))
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("LoadMap() error = %v, expected it to contain %q", err, tt.errContains)
			}
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadMap(filepath.Join(t.TempDir(), "none.json")); err == nil {
			t.Error("LoadMap() of a missing file succeeded")
		}
	})
}

func TestDefaultMap(t *testing.T) {
	m := DefaultMap()
	if err := m.Validate(); err != nil {
		t.Errorf("DefaultMap().Validate() = %v", err)
	}
	if len(m.Spawns) < 2 {
		t.Errorf("DefaultMap() has %d spawns, expected at least 2", len(m.Spawns))
	}
}

func TestMapPathFromEnv(t *testing.T) {
	setEnv(t, map[string]string{EnvMapPath: "arena.json"})
	if got := MapPathFromEnv("fallback.json"); got != "arena.json" {
		t.Errorf("MapPathFromEnv() = %q, expected arena.json", got)
	}
}
