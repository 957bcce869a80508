// pkg/spatial/quadtree.go

// Package spatial provides a region quadtree over axis-aligned bounding
// rectangles of arbitrary objects.
package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

const (
	// DefaultThreshold is the number of objects a leaf holds before splitting
	DefaultThreshold = 8
	// DefaultMaxDepth is the depth at which leaves stop splitting
	DefaultMaxDepth = 8
)

// Config tunes node capacity and depth. Zero fields take the defaults.
type Config struct {
	Threshold int `json:"threshold"`
	MaxDepth  int `json:"maxDepth"`
}

// DefaultConfig returns the default split threshold and depth
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MaxDepth: DefaultMaxDepth}
}

func (c Config) withDefaults() Config {
	if c.Threshold < 0 || c.MaxDepth < 0 {
		panic(fmt.Sprintf("spatial: invalid quadtree config %+v", c))
	}
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// RectFunc returns the bounding rectangle of an object
type RectFunc[T any] func(T) physics.Rect

// PositionFunc returns a representative point of an object. The point must
// lie within the object's rectangle.
type PositionFunc[T any] func(T) physics.Vector2D

// Pair is an unordered pair of objects whose rectangles overlap
type Pair[T any] struct {
	A T
	B T
}

type node[T comparable] struct {
	rect     physics.Rect
	depth    int
	objects  []T
	children *[4]*node[T]
}

func (n *node[T]) isLeaf() bool {
	return n.children == nil
}

// take removes obj from the node's own list by swapping in the last element
func (n *node[T]) take(obj T) bool {
	for i, o := range n.objects {
		if o == obj {
			last := len(n.objects) - 1
			n.objects[i] = n.objects[last]
			var zero T
			n.objects[last] = zero
			n.objects = n.objects[:last]
			return true
		}
	}
	return false
}

// Quadtree indexes objects by their bounding rectangles. A leaf holds up to
// Threshold objects before it splits into four quadrants; objects that
// straddle a quadrant boundary stay at the branch. An object's rectangle
// must not change while it is stored.
//
// A Quadtree is not safe for concurrent mutation.
type Quadtree[T comparable] struct {
	root       *node[T]
	rectOf     RectFunc[T]
	positionOf PositionFunc[T]
	cfg        Config
	size       int
}

// New creates an empty quadtree covering bounds. Inserted rectangles should
// lie within bounds; pad the bounds slightly to absorb rounding.
func New[T comparable](bounds physics.Rect, rectOf RectFunc[T], positionOf PositionFunc[T], cfg Config) *Quadtree[T] {
	return &Quadtree[T]{
		root:       &node[T]{rect: bounds},
		rectOf:     rectOf,
		positionOf: positionOf,
		cfg:        cfg.withDefaults(),
	}
}

// FromObjects builds a quadtree whose bounds are exactly the union of the
// objects' rectangles and inserts every object.
func FromObjects[T comparable](objects []T, rectOf RectFunc[T], positionOf PositionFunc[T], cfg Config) *Quadtree[T] {
	return FromObjectsPadded(objects, rectOf, positionOf, cfg, 0)
}

// FromObjectsPadded is FromObjects with the bounds grown by padding on
// every side.
func FromObjectsPadded[T comparable](objects []T, rectOf RectFunc[T], positionOf PositionFunc[T], cfg Config, padding float64) *Quadtree[T] {
	var bounds physics.Rect
	for i, obj := range objects {
		if i == 0 {
			bounds = rectOf(obj)
			continue
		}
		bounds = bounds.Union(rectOf(obj))
	}

	q := New(bounds.Pad(padding), rectOf, positionOf, cfg)
	for _, obj := range objects {
		q.Insert(obj)
	}
	return q
}

// Len returns the number of stored objects
func (q *Quadtree[T]) Len() int {
	return q.size
}

// Bounds returns the rectangle covered by the root node
func (q *Quadtree[T]) Bounds() physics.Rect {
	return q.root.rect
}

// quadrant returns the index of the child quadrant of bounds that fully
// contains r, or -1 when r straddles the center lines.
func quadrant(r, bounds physics.Rect) int {
	c := bounds.Center()
	var col, row int
	switch {
	case r.Max.X < c.X:
		col = 0
	case r.Min.X >= c.X:
		col = 1
	default:
		return -1
	}
	switch {
	case r.Max.Y < c.Y:
		row = 0
	case r.Min.Y >= c.Y:
		row = 1
	default:
		return -1
	}
	return row*2 + col
}

// Insert adds obj to the tree
func (q *Quadtree[T]) Insert(obj T) {
	r := q.rectOf(obj)
	n := q.root
	for {
		if n.isLeaf() {
			if n.depth >= q.cfg.MaxDepth || len(n.objects) < q.cfg.Threshold {
				n.objects = append(n.objects, obj)
				q.size++
				return
			}
			q.split(n)
			continue
		}

		i := quadrant(r, n.rect)
		if i < 0 {
			n.objects = append(n.objects, obj)
			q.size++
			return
		}
		n = n.children[i]
	}
}

// split turns a leaf into a branch, moving every object that fits in a
// single quadrant down into that child.
func (q *Quadtree[T]) split(n *node[T]) {
	var children [4]*node[T]
	for i := range children {
		children[i] = &node[T]{rect: n.rect.Quadrant(i), depth: n.depth + 1}
	}

	kept := n.objects[:0]
	for _, obj := range n.objects {
		i := quadrant(q.rectOf(obj), n.rect)
		if i < 0 {
			kept = append(kept, obj)
			continue
		}
		children[i].objects = append(children[i].objects, obj)
	}
	var zero T
	for i := len(kept); i < len(n.objects); i++ {
		n.objects[i] = zero
	}
	n.objects = kept
	n.children = &children
}

// Remove deletes obj from the tree. Removing an object that is not stored
// is a programming error and panics.
func (q *Quadtree[T]) Remove(obj T) {
	if !q.remove(q.root, obj, q.rectOf(obj)) {
		panic(fmt.Sprintf("spatial: remove of object not in quadtree: %v", obj))
	}
	q.size--
}

func (q *Quadtree[T]) remove(n *node[T], obj T, r physics.Rect) bool {
	if n.isLeaf() {
		return n.take(obj)
	}

	i := quadrant(r, n.rect)
	if i < 0 {
		if !n.take(obj) {
			return false
		}
		q.tryMerge(n)
		return true
	}

	child := n.children[i]
	if !q.remove(child, obj, r) {
		return false
	}
	if child.isLeaf() {
		q.tryMerge(n)
	}
	return true
}

// tryMerge collapses a branch into a leaf when all its children are leaves
// and the branch holds no more than Threshold objects in total.
func (q *Quadtree[T]) tryMerge(n *node[T]) {
	total := len(n.objects)
	for _, c := range n.children {
		if !c.isLeaf() {
			return
		}
		total += len(c.objects)
	}
	if total > q.cfg.Threshold {
		return
	}

	merged := make([]T, 0, total)
	merged = append(merged, n.objects...)
	for _, c := range n.children {
		merged = append(merged, c.objects...)
	}
	n.objects = merged
	n.children = nil
}

// Query returns every object whose rectangle overlaps r
func (q *Quadtree[T]) Query(r physics.Rect) []T {
	var out []T
	q.query(q.root, r, &out)
	return out
}

func (q *Quadtree[T]) query(n *node[T], r physics.Rect, out *[]T) {
	for _, obj := range n.objects {
		if q.rectOf(obj).Intersects(r) {
			*out = append(*out, obj)
		}
	}
	if n.isLeaf() {
		return
	}
	for _, c := range n.children {
		if c.rect.Intersects(r) {
			q.query(c, r, out)
		}
	}
}

// NearestNeighbor returns the object whose position is closest to point
// among those accepted by predicate. A nil predicate accepts everything.
// The second result is false when no object qualifies.
func (q *Quadtree[T]) NearestNeighbor(point physics.Vector2D, predicate func(T) bool) (T, bool) {
	s := nearestSearch[T]{
		q:         q,
		point:     point,
		predicate: predicate,
		bestDist:  math.Inf(1),
	}
	s.visit(q.root)
	return s.best, s.found
}

type nearestSearch[T comparable] struct {
	q         *Quadtree[T]
	point     physics.Vector2D
	predicate func(T) bool
	best      T
	bestDist  float64
	found     bool
}

func (s *nearestSearch[T]) visit(n *node[T]) {
	for _, obj := range n.objects {
		if s.predicate != nil && !s.predicate(obj) {
			continue
		}
		d := s.q.positionOf(obj).Distance(s.point)
		if d < s.bestDist {
			s.best, s.bestDist, s.found = obj, d, true
		}
	}
	if n.isLeaf() {
		return
	}

	var dist [4]float64
	order := [4]int{0, 1, 2, 3}
	for i, c := range n.children {
		dist[i] = c.rect.DistanceToPoint(s.point)
	}
	sort.SliceStable(order[:], func(a, b int) bool {
		return dist[order[a]] < dist[order[b]]
	})

	for _, i := range order {
		if dist[i] > s.bestDist {
			break
		}
		s.visit(n.children[i])
	}
}

// FindAllIntersections returns every unordered pair of stored objects with
// overlapping rectangles. Each pair appears once.
func (q *Quadtree[T]) FindAllIntersections() []Pair[T] {
	var out []Pair[T]
	q.findAll(q.root, &out)
	return out
}

func (q *Quadtree[T]) findAll(n *node[T], out *[]Pair[T]) {
	rects := make([]physics.Rect, len(n.objects))
	for i, obj := range n.objects {
		rects[i] = q.rectOf(obj)
	}

	for i := 0; i < len(n.objects); i++ {
		for j := i + 1; j < len(n.objects); j++ {
			if rects[i].Intersects(rects[j]) {
				*out = append(*out, Pair[T]{A: n.objects[i], B: n.objects[j]})
			}
		}
	}
	if n.isLeaf() {
		return
	}

	// Objects held at a branch may overlap anything below it
	for i, obj := range n.objects {
		for _, c := range n.children {
			q.collectOverlaps(c, obj, rects[i], out)
		}
	}
	for _, c := range n.children {
		q.findAll(c, out)
	}
}

func (q *Quadtree[T]) collectOverlaps(n *node[T], obj T, r physics.Rect, out *[]Pair[T]) {
	for _, other := range n.objects {
		if r.Intersects(q.rectOf(other)) {
			*out = append(*out, Pair[T]{A: obj, B: other})
		}
	}
	if n.isLeaf() {
		return
	}
	for _, c := range n.children {
		q.collectOverlaps(c, obj, r, out)
	}
}

// Walk calls fn for every node, depth first, with the node's bounds, depth,
// whether it is a leaf and the number of objects held directly at it.
func (q *Quadtree[T]) Walk(fn func(bounds physics.Rect, depth int, leaf bool, held int)) {
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		fn(n.rect, n.depth, n.isLeaf(), len(n.objects))
		if n.isLeaf() {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(q.root)
}
