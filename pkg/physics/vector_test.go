// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

const testEpsilon = 1e-9

func TestVector2D_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Vector2D
		expected Vector2D
	}{
		{"add_mixed_signs", Vector2D{X: 5, Y: -3}.Add(Vector2D{X: -2, Y: 7}), Vector2D{X: 3, Y: 4}},
		{"sub_negative_result", Vector2D{X: 2, Y: 3}.Sub(Vector2D{X: 5, Y: 7}), Vector2D{X: -3, Y: -4}},
		{"scale_by_half", Vector2D{X: 4, Y: -6}.Scale(0.5), Vector2D{X: 2, Y: -3}},
		{"negate", Vector2D{X: 1, Y: -2}.Negate(), Vector2D{X: -1, Y: 2}},
		{"perpendicular", Vector2D{X: 1, Y: 2}.Perpendicular(), Vector2D{X: -2, Y: 1}},
		{"lerp_midpoint", Vector2D{X: 0, Y: 0}.Lerp(Vector2D{X: 10, Y: -4}, 0.5), Vector2D{X: 5, Y: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestVector2D_Length(t *testing.T) {
	v := Vector2D{X: 3, Y: 4}
	if v.Length() != 5 {
		t.Errorf("Length() = %v, expected 5", v.Length())
	}
	if v.LengthSquared() != 25 {
		t.Errorf("LengthSquared() = %v, expected 25", v.LengthSquared())
	}
	if d := v.Distance(Vector2D{}); d != 5 {
		t.Errorf("Distance() = %v, expected 5", d)
	}
}

func TestVector2D_Normalize(t *testing.T) {
	n := Vector2D{X: 0, Y: -7}.Normalize()
	if !n.ApproxEqual(Vector2D{X: 0, Y: -1}, testEpsilon) {
		t.Errorf("Normalize() = %v, expected (0, -1)", n)
	}
}

func TestVector2D_NormalizeZeroVector_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Normalize() on zero vector should panic")
		}
	}()
	Vector2D{}.Normalize()
}

func TestVector2D_Rotate(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		angle    float64
		expected Vector2D
	}{
		{"quarter_turn", Vector2D{X: 1, Y: 0}, math.Pi / 2, Vector2D{X: 0, Y: 1}},
		{"half_turn", Vector2D{X: 1, Y: 2}, math.Pi, Vector2D{X: -1, Y: -2}},
		{"negative_quarter_turn", Vector2D{X: 0, Y: 1}, -math.Pi / 2, Vector2D{X: 1, Y: 0}},
		{"no_rotation", Vector2D{X: 3, Y: -4}, 0, Vector2D{X: 3, Y: -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.v.Rotate(tt.angle)
			if !result.ApproxEqual(tt.expected, testEpsilon) {
				t.Errorf("Rotate() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestVector2D_Reflect(t *testing.T) {
	v := Vector2D{X: 1, Y: 1}
	r := v.Reflect(Vector2D{X: -1, Y: 0})
	if !r.ApproxEqual(Vector2D{X: -1, Y: 1}, testEpsilon) {
		t.Errorf("Reflect() = %v, expected (-1, 1)", r)
	}
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi/2, 2)
	if !v.ApproxEqual(Vector2D{X: 0, Y: 2}, testEpsilon) {
		t.Errorf("FromAngle() = %v, expected (0, 2)", v)
	}
	if a := v.Angle(); math.Abs(a-math.Pi/2) > testEpsilon {
		t.Errorf("Angle() = %v, expected %v", a, math.Pi/2)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		expected float64
	}{
		{"already_normal", 1, 1},
		{"negative", -math.Pi / 2, 1.5 * math.Pi},
		{"full_turn", 2 * math.Pi, 0},
		{"several_turns", 5 * math.Pi, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeAngle(tt.angle)
			if math.Abs(result-tt.expected) > testEpsilon {
				t.Errorf("NormalizeAngle(%v) = %v, expected %v", tt.angle, result, tt.expected)
			}
			if result < 0 || result >= 2*math.Pi {
				t.Errorf("NormalizeAngle(%v) = %v, outside [0, 2π)", tt.angle, result)
			}
		})
	}
}

func TestAngleDifference(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		expected float64
	}{
		{"small_clockwise", 0, 0.5, 0.5},
		{"small_counter_clockwise", 0.5, 0, -0.5},
		{"wraps_forward", 1.9 * math.Pi, 0.1 * math.Pi, 0.2 * math.Pi},
		{"wraps_backward", 0.1 * math.Pi, 1.9 * math.Pi, -0.2 * math.Pi},
		{"opposite_turns_backward", 0, math.Pi, -math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AngleDifference(tt.from, tt.to)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("AngleDifference(%v, %v) = %v, expected %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}
