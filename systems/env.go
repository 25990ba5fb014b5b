package systems

import "github.com/pthm-cable/skirmish/config"

// Env bundles the state a system reads and mutates during one phase.
// Systems never keep it past the call.
type Env struct {
	Config    *config.Config
	Tick      int64
	Agents    *AgentPool
	Food      *FoodPool
	AgentGrid *SpatialGrid
	FoodGrid  *SpatialGrid
	RNG       *RNG
}
