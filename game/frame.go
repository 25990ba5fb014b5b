package game

import (
	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/telemetry"
)

// AgentView is the read-only view of one agent handed to presentation.
type AgentView struct {
	ID         uint32                 `json:"id"`
	X          float64                `json:"x"`
	Y          float64                `json:"y"`
	VX         float64                `json:"vx"`
	VY         float64                `json:"vy"`
	Strategy   components.Strategy    `json:"strategy"`
	Energy     float64                `json:"energy"`
	Age        float64                `json:"age"`
	Generation int32                  `json:"generation"`
	Memory     []components.Encounter `json:"memory,omitempty"`
}

// FoodView is the read-only view of one food item.
type FoodView struct {
	ID    uint32  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// Frame is a snapshot of the world after a tick.
type Frame struct {
	Tick    int64           `json:"tick"`
	Version int             `json:"version"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Agents  []AgentView     `json:"agents"`
	Food    []FoodView      `json:"food"`
	Stats   telemetry.Stats `json:"stats"`
}

// Frame fills dst with the current world state and returns it. A nil dst
// allocates a new frame. Slices in dst are reused, so a frame handed to
// another goroutine must not be passed back in.
func (g *Game) Frame(dst *Frame) *Frame {
	if dst == nil {
		dst = &Frame{}
	}
	dst.Tick = g.tick
	dst.Version = g.cfg.Version
	dst.Width = g.cfg.World.Width
	dst.Height = g.cfg.World.Height
	dst.Stats = g.stats
	dst.Stats.Energies = nil

	agents := dst.Agents[:0]
	query := g.agents.Filter().Query()
	for query.Next() {
		pos, vel, _, _, energy, agent, social := query.Get()
		if !energy.Alive {
			continue
		}
		var mem []components.Encounter
		if n := len(agents); n < cap(agents) {
			mem = agents[:n+1][n].Memory[:0]
		}
		agents = append(agents, AgentView{
			ID:         agent.ID,
			X:          pos.X,
			Y:          pos.Y,
			VX:         vel.X,
			VY:         vel.Y,
			Strategy:   agent.Strategy,
			Energy:     energy.Value,
			Age:        energy.Age,
			Generation: agent.Generation,
			Memory:     append(mem, social.Memories()...),
		})
	}
	dst.Agents = agents

	food := dst.Food[:0]
	foodQuery := g.food.Filter().Query()
	for foodQuery.Next() {
		pos, f := foodQuery.Get()
		food = append(food, FoodView{ID: f.ID, X: pos.X, Y: pos.Y, Value: f.Value})
	}
	dst.Food = food
	return dst
}
