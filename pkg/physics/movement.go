// pkg/physics/movement.go
package physics

// MovementState tracks the pose of a tracked vehicle
type MovementState struct {
	Position Vector2D
	Rotation float64 // radians, in [0, 2π)
	Velocity Vector2D
}

// UpdateMovement drives forward along the current heading at speed and then
// turns by turnRate, both scaled by deltaTime. Negative speed reverses.
func UpdateMovement(state *MovementState, deltaTime float64, speed float64, turnRate float64) {
	state.Velocity = FromAngle(state.Rotation, speed)
	state.Position = state.Position.Add(state.Velocity.Scale(deltaTime))
	state.Rotation = NormalizeAngle(state.Rotation + turnRate*deltaTime)
}
