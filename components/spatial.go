package components

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Steering holds the acceleration applied during the last movement step and
// the persistent wander-circle angle.
type Steering struct {
	AccX, AccY  float64
	WanderAngle float64 // radians, position on the wander circle
}
