package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/config"
	"github.com/pthm-cable/skirmish/traits"
)

// MovementResult summarizes one movement phase.
type MovementResult struct {
	Moved   int
	Starved int     // agents whose energy reached 0 from movement costs
	Fleeing int     // agents that steered away from a threat
	Seeking int     // agents that steered toward food
	Spent   float64 // total energy spent
}

// MovementSystem computes steering, integrates kinematics and charges
// movement and metabolic costs.
type MovementSystem struct {
	neighbors []Neighbor
	moved     []ecs.Entity
}

// NewMovementSystem creates a movement system.
func NewMovementSystem() *MovementSystem {
	return &MovementSystem{
		neighbors: make([]Neighbor, 0, 64),
	}
}

// Update moves every live agent. Neighbor queries see the positions the
// agent grid held at the start of the phase; the grid is refreshed once all
// agents have moved.
func (s *MovementSystem) Update(env Env) MovementResult {
	cfg, rng := env.Config, env.RNG
	agents, agentGrid, foodGrid := env.Agents, env.AgentGrid, env.FoodGrid
	var res MovementResult
	dt := cfg.Physics.DT
	mv := &cfg.Movement
	bounds := r2.Vec{X: cfg.World.Width, Y: cfg.World.Height}
	wrapMode := cfg.Wrap()

	s.moved = s.moved[:0]

	query := agents.Filter().Query()
	for query.Next() {
		e := query.Entity()
		pos, vel, st, tr, energy, _, _ := query.Get()
		if !energy.Alive {
			continue
		}

		p := r2.Vec{X: pos.X, Y: pos.Y}
		v := r2.Vec{X: vel.X, Y: vel.Y}
		maxSpeed := cfg.Physics.BaseMaxSpeed * tr.Speed
		maxForce := cfg.Physics.MaxForce * tr.Speed
		vision := mv.BaseVision * tr.Vision

		force := r2.Scale(mv.SeparationWeight, s.separation(e, agentGrid, mv.CrowdRadius, maxSpeed, v))

		// Flee overrides the food and wander goals.
		goal, fleeing := s.flee(e, agents, agentGrid, cfg, energy.Value, vision, maxSpeed, v)
		if fleeing {
			res.Fleeing++
		} else if g, ok := s.arrive(p, foodGrid, vision, mv.SlowRadius, maxSpeed, v); ok {
			goal = g
			res.Seeking++
		} else {
			goal = wander(st, mv, rng, maxSpeed, v)
		}
		force = r2.Add(force, goal)

		if !wrapMode {
			force = r2.Add(force, edgeForce(p, bounds, cfg.World.EdgeMargin, cfg.World.EdgeForce))
		}
		force = limit(force, maxForce)
		st.AccX, st.AccY = force.X, force.Y

		v = r2.Add(v, r2.Scale(dt, force))
		v = r2.Scale(cfg.Physics.Friction, v)
		v = limit(v, maxSpeed)
		p = r2.Add(p, r2.Scale(dt, v))

		if wrapMode {
			p.X = wrap(p.X, bounds.X)
			p.Y = wrap(p.Y, bounds.Y)
		} else {
			p, v = bounce(p, v, bounds)
		}
		pos.X, pos.Y = p.X, p.Y
		vel.X, vel.Y = v.X, v.Y

		stamina := math.Max(tr.Stamina, traits.StaminaRange.Min)
		cost := (mv.MoveCost*r2.Norm(v)*dt + mv.BaseMetabolism*(1+energy.Age*mv.AgeMetabolism)*dt) / stamina
		energy.Age += dt
		energy.Value -= cost
		res.Spent += cost
		if energy.Value <= 0 {
			energy.Value = 0
			energy.Alive = false
			res.Starved++
		}
		if energy.Value > cfg.Entity.MaxEnergy {
			energy.Value = cfg.Entity.MaxEnergy
		}

		s.moved = append(s.moved, e)
		res.Moved++
	}

	for _, e := range s.moved {
		pos := agents.Positions.Get(e)
		agentGrid.Update(e, pos.X, pos.Y)
	}
	return res
}

// separation steers away from agents inside the crowd radius, each
// weighted by the inverse of its distance.
func (s *MovementSystem) separation(e ecs.Entity, grid *SpatialGrid, radius, maxSpeed float64, v r2.Vec) r2.Vec {
	if radius <= 0 {
		return r2.Vec{}
	}
	s.neighbors = grid.QueryNearInto(s.neighbors[:0], e, radius)
	var sum r2.Vec
	for _, n := range s.neighbors {
		if n.DistSq == 0 {
			continue
		}
		sum = r2.Add(sum, r2.Scale(1/n.DistSq, r2.Vec{X: -n.DX, Y: -n.DY}))
	}
	if sum.X == 0 && sum.Y == 0 {
		return r2.Vec{}
	}
	return steer(r2.Scale(maxSpeed, unit(sum)), v)
}

// flee steers away from the nearest threat in vision, but only while the
// agent is low on energy.
func (s *MovementSystem) flee(e ecs.Entity, agents *AgentPool, grid *SpatialGrid, cfg *config.Config, energy, vision, maxSpeed float64, v r2.Vec) (r2.Vec, bool) {
	if energy >= cfg.Movement.LowEnergyThreshold {
		return r2.Vec{}, false
	}
	s.neighbors = grid.QueryNearInto(s.neighbors[:0], e, vision)
	best := -1
	for i, n := range s.neighbors {
		if !isThreat(agents, n.E, cfg.Movement.ThreatAggression) {
			continue
		}
		if best < 0 || n.DistSq < s.neighbors[best].DistSq {
			best = i
		}
	}
	if best < 0 {
		return r2.Vec{}, false
	}
	n := s.neighbors[best]
	away := unit(r2.Vec{X: -n.DX, Y: -n.DY})
	return steer(r2.Scale(maxSpeed, away), v), true
}

func isThreat(agents *AgentPool, e ecs.Entity, threatAggression float64) bool {
	if !agents.Energies.Get(e).Alive {
		return false
	}
	if agents.Agents.Get(e).Strategy == components.StrategyAggressive {
		return true
	}
	return agents.Traits.Get(e).Aggression >= threatAggression
}

// arrive steers toward the nearest food in vision, slowing inside the slow
// radius.
func (s *MovementSystem) arrive(p r2.Vec, foodGrid *SpatialGrid, vision, slowRadius, maxSpeed float64, v r2.Vec) (r2.Vec, bool) {
	s.neighbors = foodGrid.QueryRadiusInto(s.neighbors[:0], p.X, p.Y, vision, ecs.Entity{})
	best := -1
	for i, n := range s.neighbors {
		if best < 0 || n.DistSq < s.neighbors[best].DistSq {
			best = i
		}
	}
	if best < 0 {
		return r2.Vec{}, false
	}
	n := s.neighbors[best]
	d := math.Sqrt(n.DistSq)
	speed := maxSpeed
	if d < slowRadius {
		speed = maxSpeed * d / slowRadius
	}
	desired := r2.Scale(speed, unit(r2.Vec{X: n.DX, Y: n.DY}))
	return steer(desired, v), true
}

// wander projects a circle ahead of the current heading and steers toward
// a point on it that drifts by a bounded jitter each tick.
func wander(st *components.Steering, mv *config.MovementConfig, rng *RNG, maxSpeed float64, v r2.Vec) r2.Vec {
	st.WanderAngle += rng.Range(-mv.WanderJitter, mv.WanderJitter)
	st.WanderAngle = math.Remainder(st.WanderAngle, 2*math.Pi)

	heading := unit(v)
	if heading.X == 0 && heading.Y == 0 {
		heading = r2.Vec{X: 1}
	}
	sin, cos := math.Sincos(st.WanderAngle)
	target := r2.Add(
		r2.Scale(mv.WanderDistance, heading),
		r2.Scale(mv.WanderRadius, r2.Vec{X: cos, Y: sin}),
	)
	return steer(r2.Scale(maxSpeed, unit(target)), v)
}

// edgeForce pushes inward from every edge closer than margin.
func edgeForce(p, bounds r2.Vec, margin, strength float64) r2.Vec {
	var f r2.Vec
	if p.X < margin {
		f.X += strength
	}
	if p.X > bounds.X-margin {
		f.X -= strength
	}
	if p.Y < margin {
		f.Y += strength
	}
	if p.Y > bounds.Y-margin {
		f.Y -= strength
	}
	return f
}

// bounce clamps p into bounds and drops the velocity component that points
// out of them.
func bounce(p, v, bounds r2.Vec) (r2.Vec, r2.Vec) {
	if !(p.X > 0) {
		p.X = 0
		if v.X < 0 {
			v.X = 0
		}
	} else if p.X >= bounds.X {
		p.X = bounds.X
		if v.X > 0 {
			v.X = 0
		}
	}
	if !(p.Y > 0) {
		p.Y = 0
		if v.Y < 0 {
			v.Y = 0
		}
	} else if p.Y >= bounds.Y {
		p.Y = bounds.Y
		if v.Y > 0 {
			v.Y = 0
		}
	}
	return p, v
}
