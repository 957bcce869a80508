// pkg/spatial/quadtree_test.go
package spatial

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

type box struct {
	id   int
	rect physics.Rect
}

func boxRect(b *box) physics.Rect         { return b.rect }
func boxPosition(b *box) physics.Vector2D { return b.rect.Center() }

func randomBox(rng *rand.Rand, id int, world, maxSize float64) *box {
	w := 1 + rng.Float64()*maxSize
	h := 1 + rng.Float64()*maxSize
	x := rng.Float64() * (world - w)
	y := rng.Float64() * (world - h)
	return &box{id: id, rect: physics.NewRect(x, y, w, h)}
}

type pairKey struct{ a, b int }

func keyOf(a, b *box) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}

func bruteForcePairs(boxes map[int]*box) map[pairKey]bool {
	all := make([]*box, 0, len(boxes))
	for _, b := range boxes {
		all = append(all, b)
	}
	out := make(map[pairKey]bool)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].rect.Intersects(all[j].rect) {
				out[keyOf(all[i], all[j])] = true
			}
		}
	}
	return out
}

// checkStructure verifies node shape, object counts and the merge invariant
func checkStructure(t *testing.T, q *Quadtree[*box]) {
	t.Helper()
	var count func(n *node[*box]) int
	count = func(n *node[*box]) int {
		total := len(n.objects)
		if n.isLeaf() {
			return total
		}
		allLeaves := true
		for i, c := range n.children {
			if c == nil {
				t.Fatalf("branch at depth %d has nil child %d", n.depth, i)
			}
			if c.depth != n.depth+1 {
				t.Fatalf("child depth %d under parent depth %d", c.depth, n.depth)
			}
			if !c.isLeaf() {
				allLeaves = false
			}
			total += count(c)
		}
		if allLeaves && total <= q.cfg.Threshold {
			t.Fatalf("branch at depth %d holds %d objects with leaf children; should have merged", n.depth, total)
		}
		return total
	}
	if got := count(q.root); got != q.Len() {
		t.Fatalf("tree holds %d objects, Len() = %d", got, q.Len())
	}
}

func TestQuadtree_FindAllIntersectionsMatchesBruteForce(t *testing.T) {
	seeds := []int64{1, 2, 3, 42, 1234}
	for _, seed := range seeds {
		rng := rand.New(rand.NewSource(seed))
		world := 1000.0
		q := New(physics.NewRect(0, 0, world, world), boxRect, boxPosition, Config{Threshold: 4, MaxDepth: 6})
		live := make(map[int]*box)
		nextID := 0

		for step := 0; step < 600; step++ {
			if len(live) == 0 || rng.Float64() < 0.6 {
				b := randomBox(rng, nextID, world, 80)
				nextID++
				live[b.id] = b
				q.Insert(b)
			} else {
				ids := make([]int, 0, len(live))
				for id := range live {
					ids = append(ids, id)
				}
				sort.Ints(ids)
				victim := live[ids[rng.Intn(len(ids))]]
				delete(live, victim.id)
				q.Remove(victim)
			}

			checkStructure(t, q)

			if step%25 != 0 {
				continue
			}
			expected := bruteForcePairs(live)
			got := make(map[pairKey]bool)
			for _, p := range q.FindAllIntersections() {
				k := keyOf(p.A, p.B)
				if got[k] {
					t.Fatalf("seed %d step %d: duplicate pair %v", seed, step, k)
				}
				got[k] = true
			}
			if len(got) != len(expected) {
				t.Fatalf("seed %d step %d: got %d pairs, expected %d", seed, step, len(got), len(expected))
			}
			for k := range expected {
				if !got[k] {
					t.Fatalf("seed %d step %d: missing pair %v", seed, step, k)
				}
			}
		}
	}
}

func TestQuadtree_QueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	boxes := make([]*box, 300)
	for i := range boxes {
		boxes[i] = randomBox(rng, i, 500, 30)
	}
	q := FromObjects(boxes, boxRect, boxPosition, Config{})

	for trial := 0; trial < 50; trial++ {
		area := randomBox(rng, -1, 500, 120).rect
		expected := make(map[int]bool)
		for _, b := range boxes {
			if b.rect.Intersects(area) {
				expected[b.id] = true
			}
		}
		got := q.Query(area)
		if len(got) != len(expected) {
			t.Fatalf("Query() returned %d objects, expected %d", len(got), len(expected))
		}
		for _, b := range got {
			if !expected[b.id] {
				t.Fatalf("Query() returned unexpected object %d", b.id)
			}
		}
	}
}

func TestQuadtree_NearestNeighborMatchesBruteForce(t *testing.T) {
	for _, seed := range []int64{5, 6, 7} {
		rng := rand.New(rand.NewSource(seed))
		points := make([]*box, 200)
		for i := range points {
			x, y := rng.Float64()*1000, rng.Float64()*1000
			points[i] = &box{id: i, rect: physics.RectAround(physics.Vector2D{X: x, Y: y}, 0.5)}
		}
		q := FromObjectsPadded(points, boxRect, boxPosition, DefaultConfig(), 10)

		for trial := 0; trial < 100; trial++ {
			p := physics.Vector2D{X: rng.Float64()*1200 - 100, Y: rng.Float64()*1200 - 100}

			var want *box
			for _, b := range points {
				if want == nil || boxPosition(b).Distance(p) < boxPosition(want).Distance(p) {
					want = b
				}
			}

			got, ok := q.NearestNeighbor(p, nil)
			if !ok {
				t.Fatal("NearestNeighbor() found nothing")
			}
			if boxPosition(got).Distance(p) != boxPosition(want).Distance(p) {
				t.Fatalf("NearestNeighbor(%v) = %d, expected %d", p, got.id, want.id)
			}
		}
	}
}

func TestQuadtree_NearestNeighborPredicate(t *testing.T) {
	a := &box{id: 1, rect: physics.RectAround(physics.Vector2D{X: 10, Y: 10}, 1)}
	b := &box{id: 2, rect: physics.RectAround(physics.Vector2D{X: 90, Y: 90}, 1)}
	q := FromObjectsPadded([]*box{a, b}, boxRect, boxPosition, DefaultConfig(), 10)

	got, ok := q.NearestNeighbor(physics.Vector2D{X: 11, Y: 11}, func(o *box) bool { return o != a })
	if !ok || got != b {
		t.Errorf("NearestNeighbor() = %v, %v; expected object 2", got, ok)
	}

	_, ok = q.NearestNeighbor(physics.Vector2D{}, func(*box) bool { return false })
	if ok {
		t.Error("NearestNeighbor() should report no match when predicate rejects all")
	}
}

func TestQuadtree_StraddlingObjectStaysAtBranch(t *testing.T) {
	q := New(physics.NewRect(0, 0, 100, 100), boxRect, boxPosition, Config{Threshold: 2, MaxDepth: 4})
	q.Insert(&box{id: 0, rect: physics.NewRect(10, 10, 5, 5)})
	q.Insert(&box{id: 1, rect: physics.NewRect(60, 60, 5, 5)})
	center := &box{id: 2, rect: physics.NewRect(45, 45, 10, 10)}
	q.Insert(center)

	if q.root.isLeaf() {
		t.Fatal("root should have split")
	}
	if len(q.root.objects) != 1 || q.root.objects[0] != center {
		t.Errorf("root holds %v, expected only the straddling object", q.root.objects)
	}

	q.Remove(center)
	if !q.root.isLeaf() || q.Len() != 2 {
		t.Errorf("root should merge back into a leaf after removal, leaf=%v len=%d", q.root.isLeaf(), q.Len())
	}
}

func TestQuadtree_MaxDepthLeafGrows(t *testing.T) {
	q := New(physics.NewRect(0, 0, 1024, 1024), boxRect, boxPosition, Config{Threshold: 2, MaxDepth: 3})
	for i := 0; i < 10; i++ {
		q.Insert(&box{id: i, rect: physics.NewRect(1, 1, 1, 1)})
	}

	deepest, atMaxDepth := 0, 0
	q.Walk(func(_ physics.Rect, depth int, leaf bool, held int) {
		if depth > deepest {
			deepest = depth
		}
		if leaf && depth == 3 {
			atMaxDepth += held
		}
	})
	if atMaxDepth != 10 {
		t.Errorf("max-depth leaves hold %d objects, expected 10", atMaxDepth)
	}
	if deepest != 3 {
		t.Errorf("deepest node = %d, expected 3", deepest)
	}
	checkStructure(t, q)
}

func TestQuadtree_RemoveAbsentPanics(t *testing.T) {
	q := New(physics.NewRect(0, 0, 10, 10), boxRect, boxPosition, Config{})
	defer func() {
		if recover() == nil {
			t.Error("Remove() of absent object should panic")
		}
	}()
	q.Remove(&box{id: 9, rect: physics.NewRect(1, 1, 1, 1)})
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c != DefaultConfig() {
		t.Errorf("withDefaults() = %+v, expected %+v", c, DefaultConfig())
	}

	defer func() {
		if recover() == nil {
			t.Error("negative threshold should panic")
		}
	}()
	Config{Threshold: -1}.withDefaults()
}
