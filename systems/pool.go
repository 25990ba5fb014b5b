package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/skirmish/components"
)

// PoolStats reports pool usage.
type PoolStats struct {
	Acquired uint64
	Released uint64
	Live     int
}

// AgentSpawn describes a new agent. Every logical field of the entity is
// derived from it; nothing is carried over from a previous occupant.
type AgentSpawn struct {
	X, Y          float64
	Traits        components.Traits
	Strategy      components.Strategy
	Energy        float64
	Generation    int32
	ParentID      uint32
	ReproCooldown int32
	WanderAngle   float64
	Floor         bool // synthesized by population-floor enforcement
}

// AgentPool owns the ark mapper and accessors for the agent archetype.
// ark recycles entity slots and storage rows on removal; the pool layers
// stable ids and a single reset path on top.
type AgentPool struct {
	world  *ecs.World
	mapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Steering,
		components.Traits,
		components.Energy,
		components.Agent,
		components.Social,
	]
	filter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Steering,
		components.Traits,
		components.Energy,
		components.Agent,
		components.Social,
	]

	Positions  *ecs.Map1[components.Position]
	Velocities *ecs.Map1[components.Velocity]
	Steerings  *ecs.Map1[components.Steering]
	Traits     *ecs.Map1[components.Traits]
	Energies   *ecs.Map1[components.Energy]
	Agents     *ecs.Map1[components.Agent]
	Socials    *ecs.Map1[components.Social]

	nextID uint32
	stats  PoolStats
}

// NewAgentPool creates the agent archetype accessors on w.
func NewAgentPool(w *ecs.World) *AgentPool {
	return &AgentPool{
		world: w,
		mapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Steering,
			components.Traits,
			components.Energy,
			components.Agent,
			components.Social,
		](w),
		filter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Steering,
			components.Traits,
			components.Energy,
			components.Agent,
			components.Social,
		](w),
		Positions:  ecs.NewMap1[components.Position](w),
		Velocities: ecs.NewMap1[components.Velocity](w),
		Steerings:  ecs.NewMap1[components.Steering](w),
		Traits:     ecs.NewMap1[components.Traits](w),
		Energies:   ecs.NewMap1[components.Energy](w),
		Agents:     ecs.NewMap1[components.Agent](w),
		Socials:    ecs.NewMap1[components.Social](w),
		nextID:     1,
	}
}

// ResetForSpawn builds every component of an agent from s alone.
func ResetForSpawn(id uint32, s AgentSpawn) (
	components.Position,
	components.Velocity,
	components.Steering,
	components.Traits,
	components.Energy,
	components.Agent,
	components.Social,
) {
	return components.Position{X: s.X, Y: s.Y},
		components.Velocity{},
		components.Steering{WanderAngle: s.WanderAngle},
		s.Traits,
		components.Energy{Value: s.Energy, Alive: true},
		components.Agent{
			ID:            id,
			Strategy:      s.Strategy,
			ReproCooldown: s.ReproCooldown,
			Generation:    s.Generation,
			ParentID:      s.ParentID,
		},
		components.Social{}
}

// Acquire creates an agent from s and returns its entity.
// Must not be called while a query over the world is open.
func (p *AgentPool) Acquire(s AgentSpawn) ecs.Entity {
	id := p.nextID
	p.nextID++
	pos, vel, steer, tr, energy, agent, social := ResetForSpawn(id, s)
	e := p.mapper.NewEntity(&pos, &vel, &steer, &tr, &energy, &agent, &social)
	p.stats.Acquired++
	p.stats.Live++
	return e
}

// Release removes the agent from the world. Dead entities are ignored.
// Must not be called while a query over the world is open.
func (p *AgentPool) Release(e ecs.Entity) {
	if !p.world.Alive(e) {
		return
	}
	p.world.RemoveEntity(e)
	p.stats.Released++
	p.stats.Live--
}

// Reset releases every agent and restarts id assignment.
func (p *AgentPool) Reset() {
	for _, e := range p.Entities(nil) {
		p.world.RemoveEntity(e)
	}
	p.nextID = 1
	p.stats = PoolStats{}
}

// Filter returns the agent archetype filter.
func (p *AgentPool) Filter() *ecs.Filter7[
	components.Position,
	components.Velocity,
	components.Steering,
	components.Traits,
	components.Energy,
	components.Agent,
	components.Social,
] {
	return p.filter
}

// Entities appends every agent entity, in query order, to dst.
func (p *AgentPool) Entities(dst []ecs.Entity) []ecs.Entity {
	query := p.filter.Query()
	for query.Next() {
		dst = append(dst, query.Entity())
	}
	return dst
}

// Live returns the number of agents currently in the world.
func (p *AgentPool) Live() int { return p.stats.Live }

// NextID returns the id the next acquired agent will receive.
func (p *AgentPool) NextID() uint32 { return p.nextID }

// Stats returns pool counters.
func (p *AgentPool) Stats() PoolStats { return p.stats }

// FoodPool owns the ark mapper and accessors for food.
type FoodPool struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Food]
	filter *ecs.Filter2[components.Position, components.Food]

	Positions *ecs.Map1[components.Position]
	Foods     *ecs.Map1[components.Food]

	nextID uint32
	stats  PoolStats
}

// NewFoodPool creates the food archetype accessors on w.
func NewFoodPool(w *ecs.World) *FoodPool {
	return &FoodPool{
		world:     w,
		mapper:    ecs.NewMap2[components.Position, components.Food](w),
		filter:    ecs.NewFilter2[components.Position, components.Food](w),
		Positions: ecs.NewMap1[components.Position](w),
		Foods:     ecs.NewMap1[components.Food](w),
		nextID:    1,
	}
}

// Acquire creates a food item at (x, y) worth value energy.
// Must not be called while a query over the world is open.
func (p *FoodPool) Acquire(x, y, value float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	food := components.Food{ID: p.nextID, Value: value}
	p.nextID++
	e := p.mapper.NewEntity(&pos, &food)
	p.stats.Acquired++
	p.stats.Live++
	return e
}

// Release removes the food item from the world. Dead entities are ignored.
func (p *FoodPool) Release(e ecs.Entity) {
	if !p.world.Alive(e) {
		return
	}
	p.world.RemoveEntity(e)
	p.stats.Released++
	p.stats.Live--
}

// Reset releases every food item and restarts id assignment.
func (p *FoodPool) Reset() {
	for _, e := range p.Entities(nil) {
		p.world.RemoveEntity(e)
	}
	p.nextID = 1
	p.stats = PoolStats{}
}

// Filter returns the food archetype filter.
func (p *FoodPool) Filter() *ecs.Filter2[components.Position, components.Food] {
	return p.filter
}

// Entities appends every food entity, in query order, to dst.
func (p *FoodPool) Entities(dst []ecs.Entity) []ecs.Entity {
	query := p.filter.Query()
	for query.Next() {
		dst = append(dst, query.Entity())
	}
	return dst
}

// Live returns the number of food items currently in the world.
func (p *FoodPool) Live() int { return p.stats.Live }

// Stats returns pool counters.
func (p *FoodPool) Stats() PoolStats { return p.stats }
