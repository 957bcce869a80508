// pkg/entity/entity_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-tankwars/pkg/collision"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

func TestBody_RotationNormalized(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		expected float64
	}{
		{"within_range", 1, 1},
		{"negative", -math.Pi / 2, 1.5 * math.Pi},
		{"over_full_turn", 2*math.Pi + 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCoin(physics.Vector2D{}, 10)
			c.SetRotation(tt.rotation)
			if math.Abs(c.Rotation()-tt.expected) > 1e-9 {
				t.Errorf("Rotation() = %v, expected %v", c.Rotation(), tt.expected)
			}
		})
	}
}

func TestBody_HitboxCacheFollowsPose(t *testing.T) {
	r := NewRobot("test", DefaultRobotStats(), DefaultBulletStats())
	first := r.Rect()
	if math.Abs(first.Width()-136) > 1e-9 || math.Abs(first.Height()-130) > 1e-9 {
		t.Fatalf("Rect() = %v, expected 136 x 130", first)
	}

	r.SetPosition(physics.Vector2D{X: 100, Y: 50})
	moved := r.Rect()
	if !moved.Center().ApproxEqual(physics.Vector2D{X: 100, Y: 50}, 1e-9) {
		t.Errorf("Rect() after move centered at %v, expected (100, 50)", moved.Center())
	}

	r.SetRotation(math.Pi / 2)
	turned := r.Rect()
	if math.Abs(turned.Width()-130) > 1e-9 || math.Abs(turned.Height()-136) > 1e-9 {
		t.Errorf("Rect() after quarter turn = %v, expected 130 x 136", turned)
	}

	hitbox := r.AbsoluteHitbox()
	if len(hitbox) != 4 {
		t.Fatalf("AbsoluteHitbox() has %d vertices, expected 4", len(hitbox))
	}
	if !hitbox.Bounds().Center().ApproxEqual(physics.Vector2D{X: 100, Y: 50}, 1e-9) {
		t.Errorf("AbsoluteHitbox() centered at %v", hitbox.Bounds().Center())
	}
}

func TestBody_DestroyTwicePanics(t *testing.T) {
	c := NewCoin(physics.Vector2D{}, 10)
	c.Destroy()
	if c.Alive() {
		t.Fatal("coin should be dead after Destroy()")
	}

	defer func() {
		if recover() == nil {
			t.Error("second Destroy() should panic")
		}
	}()
	c.Destroy()
}

func TestEntity_UniqueIDs(t *testing.T) {
	a := NewCoin(physics.Vector2D{}, 1)
	b := NewCoin(physics.Vector2D{}, 1)
	if a.ID() == b.ID() {
		t.Errorf("entities share ID %d", a.ID())
	}
	if a.GetBasicEntity().ID() != a.ID() {
		t.Error("GetBasicEntity() should expose the same identity")
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		KindRobot:  "robot",
		KindBullet: "bullet",
		KindWall:   "wall",
		KindCoin:   "coin",
		Kind(9):    "kind(9)",
	}
	for k, expected := range kinds {
		if k.String() != expected {
			t.Errorf("Kind(%d).String() = %q, expected %q", int(k), k.String(), expected)
		}
	}
}

func TestWall_PathfindingHitbox(t *testing.T) {
	w := NewWall(physics.Vector2D{X: 100, Y: 100}, physics.Vector2D{X: 200, Y: 50}, 0, physics.Vector2D{X: 65, Y: 65})

	if !w.IsStatic() {
		t.Error("walls should be static")
	}
	if w.Rect() != physics.NewRect(0, 75, 200, 50) {
		t.Errorf("Rect() = %v", w.Rect())
	}
	if w.PathfindingRect() != physics.NewRect(-65, 10, 330, 180) {
		t.Errorf("PathfindingRect() = %v", w.PathfindingRect())
	}
	for _, v := range w.AbsoluteHitbox() {
		if !physics.PointInConvexPolygon(v, w.PathfindingHitbox()) {
			t.Errorf("wall corner %v not inside pathfinding hitbox", v)
		}
	}
}

func TestWall_CannotMove(t *testing.T) {
	w := NewWall(physics.Vector2D{}, physics.Vector2D{X: 10, Y: 10}, 0, physics.Vector2D{})
	defer func() {
		if recover() == nil {
			t.Error("Displace() on a wall should panic")
		}
	}()
	w.Displace(physics.Vector2D{X: 1})
}

func TestCoin_CollectedByLivingRobot(t *testing.T) {
	r := NewRobot("collector", DefaultRobotStats(), DefaultBulletStats())
	c := NewCoin(physics.Vector2D{X: 30}, DefaultCoinRadius)

	if _, ok := collision.ResolvePair(c, r); !ok {
		t.Fatal("coin and robot should collide")
	}
	if r.Coins() != 1 || c.Alive() {
		t.Errorf("coins = %d, coin alive = %v; expected 1 and false", r.Coins(), c.Alive())
	}
	if r.Position() != (physics.Vector2D{}) {
		t.Errorf("robot displaced to %v by a coin", r.Position())
	}

	// A dead coin awards nothing
	c.OnCollide(r, physics.Vector2D{X: 1})
	if r.Coins() != 1 {
		t.Errorf("coins = %d after touching a dead coin", r.Coins())
	}
}
