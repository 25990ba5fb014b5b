package components

// Energy tracks an agent's metabolic state.
// Value is in absolute energy units and never leaves [0, MaxEnergy] at a tick
// boundary.
type Energy struct {
	Value float64
	Age   float64 // seconds alive
	Alive bool
}

// Traits are bounded multipliers that distinguish individual agents.
type Traits struct {
	Speed      float64 // scales max speed
	Vision     float64 // scales perception radius
	Aggression float64 // 0..1, read by threat detection and the random strategy
	Stamina    float64 // divides movement and metabolic costs
}

// Agent bundles identity, strategy and reproduction state.
type Agent struct {
	ID            uint32
	Strategy      Strategy
	ReproCooldown int32 // ticks until the agent may reproduce again
	Generation    int32
	ParentID      uint32 // 0 for founders and floor spawns
}

// Food is a consumable energy source.
type Food struct {
	ID    uint32
	Value float64
}
