// pkg/navigation/graph.go

// Package navigation builds a visibility graph around static obstacles and
// plans turn-aware routes through it.
package navigation

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// minExtent keeps R-tree rectangles non-degenerate
const minExtent = 1e-6

// Config tunes graph construction and path costs
type Config struct {
	// MoveSpeed and TurnSpeed convert distance and turning into seconds
	MoveSpeed float64 `json:"moveSpeed"`
	TurnSpeed float64 `json:"turnSpeed"`
	// MaxVisibleNodes bounds how many nearby nodes a free point links to
	MaxVisibleNodes int `json:"maxVisibleNodes"`
	// NodeEpsilon is the distance under which two points are the same
	NodeEpsilon float64 `json:"nodeEpsilon"`
	// EdgeTolerance trims expanded hitbox edges so rays along them pass
	EdgeTolerance    float64 `json:"edgeTolerance"`
	RTreeMinChildren int     `json:"rtreeMinChildren"`
	RTreeMaxChildren int     `json:"rtreeMaxChildren"`
}

// DefaultConfig returns the costs of a standard tank
func DefaultConfig() Config {
	return Config{
		MoveSpeed:        300,
		TurnSpeed:        math.Pi,
		MaxVisibleNodes:  8,
		NodeEpsilon:      1e-4,
		EdgeTolerance:    1e-4,
		RTreeMinChildren: 2,
		RTreeMaxChildren: 8,
	}
}

// Obstacle is a static shape robots must route around. Hitbox is the true
// outline and Expanded the outline grown by the robot clearance, both in
// world coordinates.
type Obstacle struct {
	Hitbox   physics.Polygon
	Expanded physics.Polygon
}

// NewObstacle places a local-space polygon in the world and derives its
// expanded outline from clearance.
func NewObstacle(local physics.Polygon, position physics.Vector2D, rotation float64, clearance physics.Vector2D) Obstacle {
	return Obstacle{
		Hitbox:   local.Transform(rotation, position),
		Expanded: physics.ExpandPolygon(local, clearance).Transform(rotation, position),
	}
}

type obstacleEntry struct {
	bounds   rtreego.Rect
	blockers []physics.Segment
}

func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bounds
}

func toRTreeRect(r physics.Rect) rtreego.Rect {
	w := math.Max(r.Width(), minExtent)
	h := math.Max(r.Height(), minExtent)
	rect, err := rtreego.NewRect(rtreego.Point{r.Min.X, r.Min.Y}, []float64{w, h})
	if err != nil {
		panic(fmt.Sprintf("navigation: invalid rectangle %v: %v", r, err))
	}
	return rect
}

// Graph is a visibility graph over the corners of expanded obstacles. It
// is immutable after construction and safe for concurrent use.
type Graph struct {
	cfg       Config
	index     *rtreego.Rtree
	nodes     []physics.Vector2D
	neighbors [][]int
}

// NewGraph builds the visibility graph for a static obstacle layout.
// Corners lying inside another obstacle's expanded outline are dropped and
// the remaining corners are linked whenever they can see each other.
func NewGraph(obstacles []Obstacle, cfg Config) *Graph {
	g := &Graph{cfg: cfg}
	g.buildIndex(obstacles)
	g.buildNodes(obstacles)
	g.linkNodes()
	return g
}

func (g *Graph) buildIndex(obstacles []Obstacle) {
	spatials := make([]rtreego.Spatial, 0, len(obstacles))
	for _, o := range obstacles {
		blockers := o.Hitbox.Edges(0)
		blockers = append(blockers, o.Expanded.Edges(g.cfg.EdgeTolerance)...)
		bounds := o.Expanded.Bounds().Union(o.Hitbox.Bounds())
		spatials = append(spatials, &obstacleEntry{
			bounds:   toRTreeRect(bounds),
			blockers: blockers,
		})
	}
	g.index = rtreego.NewTree(2, g.cfg.RTreeMinChildren, g.cfg.RTreeMaxChildren, spatials...)
}

func (g *Graph) buildNodes(obstacles []Obstacle) {
	candidates := make(map[physics.Vector2D]bool)
	for _, o := range obstacles {
		for _, v := range o.Expanded {
			candidates[v] = true
		}
	}

	for i := 0; i < len(obstacles)-1; i++ {
		for j := i + 1; j < len(obstacles); j++ {
			a, b := obstacles[i].Expanded, obstacles[j].Expanded
			if !physics.PolygonsIntersect(a, b) {
				continue
			}
			for _, v := range a {
				if physics.PointInConvexPolygon(v, b) {
					delete(candidates, v)
				}
			}
			for _, v := range b {
				if physics.PointInConvexPolygon(v, a) {
					delete(candidates, v)
				}
			}
		}
	}

	g.nodes = make([]physics.Vector2D, 0, len(candidates))
	for v := range candidates {
		g.nodes = append(g.nodes, v)
	}
	sort.Slice(g.nodes, func(i, j int) bool {
		if g.nodes[i].X != g.nodes[j].X {
			return g.nodes[i].X < g.nodes[j].X
		}
		return g.nodes[i].Y < g.nodes[j].Y
	})
}

func (g *Graph) linkNodes() {
	g.neighbors = make([][]int, len(g.nodes))
	for i := 0; i < len(g.nodes)-1; i++ {
		for j := i + 1; j < len(g.nodes); j++ {
			if g.CanSee(g.nodes[i], g.nodes[j]) {
				g.neighbors[i] = append(g.neighbors[i], j)
				g.neighbors[j] = append(g.neighbors[j], i)
			}
		}
	}
}

// Nodes returns the positions of all graph nodes
func (g *Graph) Nodes() []physics.Vector2D {
	return append([]physics.Vector2D(nil), g.nodes...)
}

// Neighbors returns the indices of the nodes linked to node i
func (g *Graph) Neighbors(i int) []int {
	return append([]int(nil), g.neighbors[i]...)
}

// CanSee reports whether the segment between a and b crosses neither a
// true obstacle outline nor, beyond the edge tolerance, an expanded one.
func (g *Graph) CanSee(a, b physics.Vector2D) bool {
	query := toRTreeRect(physics.RectFromPoints(a, b).Pad(1))
	var segments []physics.Segment
	for _, s := range g.index.SearchIntersect(query) {
		segments = append(segments, s.(*obstacleEntry).blockers...)
	}
	return physics.CanSee(a, b, segments, g.cfg.NodeEpsilon)
}

// TravelCost estimates the seconds needed to reach to from from while
// initially facing rotation: straight-line driving plus turning in place.
func (g *Graph) TravelCost(from physics.Vector2D, rotation float64, to physics.Vector2D) float64 {
	d := to.Sub(from)
	drive := d.Length() / g.cfg.MoveSpeed
	turn := math.Abs(physics.AngleDifference(rotation, d.Angle())) / g.cfg.TurnSpeed
	return drive + turn
}

// VisibleNodes returns graph nodes visible from point, cheapest first.
// Only the MaxVisibleNodes cheapest candidates are examined unless none of
// them is visible, in which case the search continues until one is found.
// With a rotation the ranking is TravelCost; without, squared distance.
func (g *Graph) VisibleNodes(point physics.Vector2D, rotation *float64) []int {
	type ranked struct {
		node int
		cost float64
	}
	order := make([]ranked, len(g.nodes))
	for i, n := range g.nodes {
		cost := point.Sub(n).LengthSquared()
		if rotation != nil {
			cost = g.TravelCost(point, *rotation, n)
		}
		order[i] = ranked{node: i, cost: cost}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].cost < order[j].cost
	})

	var visible []int
	for i := 0; i < len(order) && (len(visible) == 0 || i < g.cfg.MaxVisibleNodes); i++ {
		if g.CanSee(point, g.nodes[order[i].node]) {
			visible = append(visible, order[i].node)
		}
	}
	return visible
}

// AvailableNodes returns the linked nodes lying strictly inside bounds
func (g *Graph) AvailableNodes(bounds physics.Rect) []physics.Vector2D {
	var out []physics.Vector2D
	for i, n := range g.nodes {
		if len(g.neighbors[i]) == 0 {
			continue
		}
		if n.X > bounds.Min.X && n.X < bounds.Max.X && n.Y > bounds.Min.Y && n.Y < bounds.Max.Y {
			out = append(out, n)
		}
	}
	return out
}
