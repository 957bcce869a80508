// pkg/navigation/graph_test.go

package navigation

import (
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

func box(x, y, halfWidth, halfHeight float64) Obstacle {
	return NewObstacle(physics.BoxPolygon(halfWidth, halfHeight), physics.Vector2D{X: x, Y: y}, 0, physics.Vector2D{X: 10, Y: 10})
}

// enclosure walls off a 200x200 room centred on (500, 500)
func enclosure() []Obstacle {
	return []Obstacle{
		box(500, 375, 150, 25),
		box(500, 625, 150, 25),
		box(375, 500, 25, 150),
		box(625, 500, 25, 150),
	}
}

func TestNewGraphNodes(t *testing.T) {
	t.Run("single_obstacle", func(t *testing.T) {
		g := NewGraph([]Obstacle{box(0, 0, 50, 50)}, DefaultConfig())
		expected := []physics.Vector2D{{X: -60, Y: -60}, {X: -60, Y: 60}, {X: 60, Y: -60}, {X: 60, Y: 60}}
		if got := g.Nodes(); !reflect.DeepEqual(got, expected) {
			t.Errorf("Nodes() = %v, expected %v", got, expected)
		}
		// opposite corners are hidden behind the obstacle
		for i := range expected {
			if got := len(g.Neighbors(i)); got != 2 {
				t.Errorf("len(Neighbors(%d)) = %d, expected 2", i, got)
			}
		}
	})

	t.Run("overlapping_obstacles_drop_buried_corners", func(t *testing.T) {
		g := NewGraph([]Obstacle{box(0, 0, 50, 50), box(50, 20, 50, 50)}, DefaultConfig())
		nodes := g.Nodes()
		if len(nodes) != 6 {
			t.Fatalf("len(Nodes()) = %d, expected 6", len(nodes))
		}
		for _, buried := range []physics.Vector2D{{X: 60, Y: 60}, {X: -10, Y: -40}} {
			for _, n := range nodes {
				if n == buried {
					t.Errorf("Nodes() contains buried corner %v", buried)
				}
			}
		}
	})

	t.Run("shared_corners_deduplicated", func(t *testing.T) {
		g := NewGraph([]Obstacle{box(0, 0, 50, 50), box(0, 0, 50, 50)}, DefaultConfig())
		if got := len(g.Nodes()); got != 4 {
			t.Errorf("len(Nodes()) = %d, expected 4", got)
		}
	})
}

func TestCanSee(t *testing.T) {
	g := NewGraph([]Obstacle{box(200, 0, 50, 50)}, DefaultConfig())

	tests := []struct {
		name     string
		a, b     physics.Vector2D
		expected bool
	}{
		{"through_wall", physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 400, Y: 0}, false},
		{"through_clearance", physics.Vector2D{X: 0, Y: 55}, physics.Vector2D{X: 400, Y: 55}, false},
		{"clear_above", physics.Vector2D{X: 0, Y: 100}, physics.Vector2D{X: 400, Y: 100}, true},
		{"along_expanded_edge", physics.Vector2D{X: 140, Y: -60}, physics.Vector2D{X: 260, Y: -60}, true},
		{"same_point", physics.Vector2D{X: 5, Y: 5}, physics.Vector2D{X: 5, Y: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanSee(tt.a, tt.b); got != tt.expected {
				t.Errorf("CanSee(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestTravelCost(t *testing.T) {
	g := NewGraph(nil, DefaultConfig())
	from := physics.Vector2D{X: 0, Y: 0}

	tests := []struct {
		name     string
		rotation float64
		to       physics.Vector2D
		expected float64
	}{
		{"facing_target", 0, physics.Vector2D{X: 300, Y: 0}, 1},
		{"facing_away", math.Pi, physics.Vector2D{X: 300, Y: 0}, 2},
		{"quarter_turn", math.Pi / 2, physics.Vector2D{X: 600, Y: 0}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.TravelCost(from, tt.rotation, tt.to); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("TravelCost() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestVisibleNodes(t *testing.T) {
	t.Run("limit_counts_examined_candidates", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxVisibleNodes = 2
		g := NewGraph([]Obstacle{box(0, 0, 50, 50)}, cfg)
		// from the left the two nearest corners are both visible
		got := g.VisibleNodes(physics.Vector2D{X: -200, Y: 0}, nil)
		if len(got) != 2 {
			t.Fatalf("len(VisibleNodes()) = %d, expected 2", len(got))
		}
		for _, n := range got {
			if g.Nodes()[n].X != -60 {
				t.Errorf("VisibleNodes() returned %v, expected a left corner", g.Nodes()[n])
			}
		}
	})

	t.Run("searches_past_limit_when_nothing_visible", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxVisibleNodes = 1
		// a long thin wall hides every corner of the box from the point
		g := NewGraph([]Obstacle{box(0, 0, 50, 50), box(100, 0, 5, 200)}, cfg)
		got := g.VisibleNodes(physics.Vector2D{X: 130, Y: 0}, nil)
		if len(got) != 1 {
			t.Fatalf("len(VisibleNodes()) = %d, expected 1", len(got))
		}
		expected := physics.Vector2D{X: 115, Y: -210}
		if n := g.Nodes()[got[0]]; n != expected {
			t.Errorf("VisibleNodes() returned %v, expected %v", n, expected)
		}
	})

	t.Run("enclosed_point_sees_nothing", func(t *testing.T) {
		g := NewGraph(enclosure(), DefaultConfig())
		if got := g.VisibleNodes(physics.Vector2D{X: 500, Y: 500}, nil); len(got) != 0 {
			t.Errorf("VisibleNodes() = %v, expected none", got)
		}
	})
}

func TestAvailableNodes(t *testing.T) {
	g := NewGraph([]Obstacle{box(0, 0, 50, 50)}, DefaultConfig())
	got := g.AvailableNodes(physics.NewRect(-100, -100, 200, 100))
	if len(got) != 2 {
		t.Fatalf("len(AvailableNodes()) = %d, expected 2", len(got))
	}
	for _, n := range got {
		if n.Y != -60 {
			t.Errorf("AvailableNodes() returned %v, expected a top corner", n)
		}
	}
}

func TestPathfind(t *testing.T) {
	t.Run("direct_line", func(t *testing.T) {
		g := NewGraph([]Obstacle{box(200, 300, 50, 50)}, DefaultConfig())
		start, goal := physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 400, Y: 0}
		path, ok := g.Pathfind(start, 0, goal)
		if !ok || !reflect.DeepEqual(path, []physics.Vector2D{start, goal}) {
			t.Errorf("Pathfind() = %v, %v, expected [%v %v], true", path, ok, start, goal)
		}
	})

	t.Run("around_obstacle", func(t *testing.T) {
		obstacle := box(200, 0, 50, 50)
		g := NewGraph([]Obstacle{obstacle}, DefaultConfig())
		start, goal := physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 400, Y: 0}
		path, ok := g.Pathfind(start, 0, goal)
		if !ok {
			t.Fatalf("Pathfind() ok = false, expected true")
		}
		if path[0] != start || path[len(path)-1] != goal {
			t.Errorf("Pathfind() = %v, expected to run from %v to %v", path, start, goal)
		}
		if len(path) != 4 {
			t.Errorf("len(Pathfind()) = %d, expected 4", len(path))
		}
		for i := 0; i < len(path)-1; i++ {
			if !g.CanSee(path[i], path[i+1]) {
				t.Errorf("leg %v -> %v is blocked", path[i], path[i+1])
			}
		}
		for _, p := range path {
			if physics.PointInConvexPolygon(p, obstacle.Expanded) {
				t.Errorf("waypoint %v lies inside the obstacle clearance", p)
			}
		}
	})

	t.Run("unreachable_goal_falls_back", func(t *testing.T) {
		g := NewGraph(enclosure(), DefaultConfig())
		start, goal := physics.Vector2D{X: 100, Y: 100}, physics.Vector2D{X: 500, Y: 500}
		path, ok := g.Pathfind(start, 0, goal)
		if ok {
			t.Errorf("Pathfind() ok = true, expected false")
		}
		if len(path) == 0 || path[0] != start {
			t.Fatalf("Pathfind() = %v, expected to begin at %v", path, start)
		}
		if path[len(path)-1] == goal {
			t.Errorf("Pathfind() reached enclosed goal %v", goal)
		}
	})

	t.Run("graph_unchanged", func(t *testing.T) {
		g := NewGraph(enclosure(), DefaultConfig())
		before := make([][]int, len(g.Nodes()))
		for i := range before {
			before[i] = g.Neighbors(i)
		}
		g.Pathfind(physics.Vector2D{X: 100, Y: 100}, 0, physics.Vector2D{X: 900, Y: 900})
		g.Pathfind(physics.Vector2D{X: 100, Y: 100}, 0, physics.Vector2D{X: 500, Y: 500})
		for i := range before {
			if got := g.Neighbors(i); !reflect.DeepEqual(got, before[i]) {
				t.Errorf("Neighbors(%d) = %v after queries, expected %v", i, got, before[i])
			}
		}
	})
}

func TestPathfindConcurrent(t *testing.T) {
	g := NewGraph(append(enclosure(), box(200, 0, 50, 50)), DefaultConfig())
	start, goal := physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 900, Y: 900}
	expected, _ := g.Pathfind(start, 0, goal)

	var wg sync.WaitGroup
	results := make([][]physics.Vector2D, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Pathfind(start, 0, goal)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("goroutine %d: Pathfind() = %v, expected %v", i, got, expected)
		}
	}
}
