// pkg/navigation/astar.go

package navigation

import (
	"container/heap"
	"math"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

type openItem struct {
	f    float64
	seq  int
	node int
}

// openSet is a min-heap ordered by f, then insertion order
type openSet []openItem

func (s openSet) Len() int { return len(s) }
func (s openSet) Less(i, j int) bool {
	if s[i].f != s[j].f {
		return s[i].f < s[j].f
	}
	return s[i].seq < s[j].seq
}
func (s openSet) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s *openSet) Push(x interface{}) { *s = append(*s, x.(openItem)) }
func (s *openSet) Pop() interface{} {
	old := *s
	item := old[len(old)-1]
	*s = old[:len(old)-1]
	return item
}

// search holds the per-query state of one A* run. The start and goal are
// virtual nodes numbered after the graph's own so the graph is never
// modified by a query.
type search struct {
	g             *Graph
	start, goal   int
	startRotation float64
	positions     []physics.Vector2D
	startLinks    []int
	goalLinked    map[int]bool
	cameFrom      map[int]int
	gScore        map[int]float64
}

func (s *search) position(n int) physics.Vector2D {
	if n < len(s.g.nodes) {
		return s.g.nodes[n]
	}
	return s.positions[n-len(s.g.nodes)]
}

func (s *search) neighbors(n int) []int {
	switch n {
	case s.start:
		return s.startLinks
	case s.goal:
		return nil
	}
	if !s.goalLinked[n] {
		return s.g.neighbors[n]
	}
	out := make([]int, 0, len(s.g.neighbors[n])+1)
	out = append(out, s.g.neighbors[n]...)
	return append(out, s.goal)
}

// rotation is the heading a robot has on arrival at n
func (s *search) rotation(n int) float64 {
	if n == s.start {
		return s.startRotation
	}
	if prev, ok := s.cameFrom[n]; ok {
		return s.position(n).Sub(s.position(prev)).Angle()
	}
	return 0
}

func (s *search) score(n int) float64 {
	if v, ok := s.gScore[n]; ok {
		return v
	}
	return math.Inf(1)
}

func (s *search) heuristic(n int) float64 {
	return s.g.TravelCost(s.position(n), s.rotation(n), s.position(s.goal))
}

func (s *search) path(end int) []physics.Vector2D {
	reversed := []physics.Vector2D{s.position(end)}
	limit := len(s.g.nodes) + 2
	for n, ok := s.cameFrom[end]; ok && len(reversed) <= limit; n, ok = s.cameFrom[n] {
		reversed = append(reversed, s.position(n))
	}
	out := make([]physics.Vector2D, len(reversed))
	for i, p := range reversed {
		out[len(reversed)-1-i] = p
	}
	return out
}

func (s *search) run() ([]physics.Vector2D, bool) {
	s.gScore[s.start] = 0
	open := &openSet{}
	seq := 0
	heap.Push(open, openItem{f: s.heuristic(s.start), seq: seq, node: s.start})

	seen := make(map[int]bool)
	closest, closestH := s.start, math.Inf(1)

	for open.Len() > 0 {
		current := heap.Pop(open).(openItem).node
		if seen[current] {
			continue
		}
		if current == s.goal {
			return s.path(current), true
		}

		rotation := s.rotation(current)
		from := s.position(current)
		for _, next := range s.neighbors(current) {
			tentative := s.score(current) + s.g.TravelCost(from, rotation, s.position(next))
			if tentative < s.score(next) {
				s.cameFrom[next] = current
				s.gScore[next] = tentative
				seq++
				heap.Push(open, openItem{f: tentative + s.heuristic(next), seq: seq, node: next})
			}
		}

		if h := s.heuristic(current); h < closestH {
			closest, closestH = current, h
		}
		seen[current] = true
	}

	return s.path(closest), false
}

// Pathfind plans a route from start, facing rotation, to goal. The result
// begins with start. When the goal is reachable it ends with goal and ok
// is true; otherwise it ends at the explored point closest to the goal by
// the travel-cost heuristic and ok is false.
func (g *Graph) Pathfind(start physics.Vector2D, rotation float64, goal physics.Vector2D) ([]physics.Vector2D, bool) {
	if g.CanSee(start, goal) {
		return []physics.Vector2D{start, goal}, true
	}

	n := len(g.nodes)
	s := &search{
		g:             g,
		start:         n,
		goal:          n + 1,
		startRotation: rotation,
		positions:     []physics.Vector2D{start, goal},
		startLinks:    g.VisibleNodes(start, &rotation),
		goalLinked:    make(map[int]bool),
		cameFrom:      make(map[int]int),
		gScore:        make(map[int]float64),
	}
	for _, node := range g.VisibleNodes(goal, nil) {
		s.goalLinked[node] = true
	}
	return s.run()
}
