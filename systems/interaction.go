package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/skirmish/components"
)

// EncounterRecord is one resolved agent-agent encounter.
// A is the agent whose neighbor query found B.
type EncounterRecord struct {
	Tick      int64
	A, B      uint32
	ActionA   components.Action
	ActionB   components.Action
	DeltaA    float64 // applied before clamping
	DeltaB    float64
	Knockback bool
}

// InteractionResult summarizes one interaction phase.
type InteractionResult struct {
	Encounters int
	Fights     int // encounters in which either side fought
	Shares     int // encounters in which both sides shared
	Flees      int // encounters in which either side fled
	Ignores    int // encounters in which either side ignored
	FoodEaten  int
	FoodEnergy float64
	Deaths     int

	// Actions tallies the actions chosen, per strategy of the chooser.
	Actions [components.NumStrategies][components.NumActions]int

	// Eaten lists food consumed this tick, in consumption order. The slice
	// is reused by the next Update.
	Eaten []ecs.Entity
	// Records lists resolved encounters in resolution order. The slice is
	// reused by the next Update.
	Records []EncounterRecord
}

type pairKey struct {
	lo, hi uint32
}

func makePairKey(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// InteractionSystem resolves agent-food consumption and agent-agent
// encounters.
type InteractionSystem struct {
	neighbors []Neighbor
	resolved  map[pairKey]struct{}
	eaten     map[ecs.Entity]struct{}
	eatenList []ecs.Entity
	records   []EncounterRecord
}

// NewInteractionSystem creates an interaction system.
func NewInteractionSystem() *InteractionSystem {
	return &InteractionSystem{
		neighbors: make([]Neighbor, 0, 64),
		resolved:  make(map[pairKey]struct{}),
		eaten:     make(map[ecs.Entity]struct{}),
	}
}

// Update runs one interaction phase. Agents are visited in query order;
// an agent that dies starts no further pairings, but pairings resolved
// before its death stand.
func (s *InteractionSystem) Update(env Env) InteractionResult {
	cfg, tick, rng := env.Config, env.Tick, env.RNG
	agents, agentGrid, foodGrid := env.Agents, env.AgentGrid, env.FoodGrid
	clear(s.resolved)
	clear(s.eaten)
	s.eatenList = s.eatenList[:0]
	s.records = s.records[:0]

	var res InteractionResult
	ic := &cfg.Interaction
	matrix := NewPayoffMatrix(cfg)
	maxEnergy := cfg.Entity.MaxEnergy
	cooldown := int32(ic.CooldownTicks)

	query := agents.Filter().Query()
	for query.Next() {
		_, _, _, _, _, _, social := query.Get()
		social.TickCooldowns()
	}

	query = agents.Filter().Query()
	for query.Next() {
		e := query.Entity()
		pos, vel, _, tr, energy, agent, social := query.Get()
		if !energy.Alive {
			continue
		}

		// Food
		s.neighbors = foodGrid.QueryRadiusInto(s.neighbors[:0], pos.X, pos.Y, ic.CollisionRadius, ecs.Entity{})
		for _, n := range s.neighbors {
			if _, done := s.eaten[n.E]; done {
				continue
			}
			food := env.Food.Foods.Get(n.E).Value
			energy.Value = clamp(energy.Value+food, 0, maxEnergy)
			s.eaten[n.E] = struct{}{}
			s.eatenList = append(s.eatenList, n.E)
			res.FoodEaten++
			res.FoodEnergy += food
		}

		// Agents
		s.neighbors = agentGrid.QueryNearInto(s.neighbors[:0], e, ic.Radius)
		for _, n := range s.neighbors {
			if !energy.Alive {
				break
			}
			oEnergy := agents.Energies.Get(n.E)
			if !oEnergy.Alive {
				continue
			}
			oAgent := agents.Agents.Get(n.E)
			if oAgent.ID == agent.ID {
				continue
			}
			key := makePairKey(agent.ID, oAgent.ID)
			if _, done := s.resolved[key]; done {
				continue
			}
			oSocial := agents.Socials.Get(n.E)
			if social.OnCooldown(oAgent.ID) || oSocial.OnCooldown(agent.ID) {
				continue
			}
			s.resolved[key] = struct{}{}

			oTraits := agents.Traits.Get(n.E)
			self := Party{ID: agent.ID, Strategy: agent.Strategy, Energy: energy.Value, Aggression: tr.Aggression}
			opp := Party{ID: oAgent.ID, Strategy: oAgent.Strategy, Energy: oEnergy.Value, Aggression: oTraits.Aggression}

			memA, knownA := social.Recall(oAgent.ID)
			memB, knownB := oSocial.Recall(agent.ID)
			actA := Decide(self, opp, memA, knownA, rng)
			actB := Decide(opp, self, memB, knownB, rng)

			dA, dB := matrix.Resolve(actA, actB)
			energy.Value = clamp(energy.Value+dA, 0, maxEnergy)
			oEnergy.Value = clamp(oEnergy.Value+dB, 0, maxEnergy)

			fought := actA == components.ActionFight || actB == components.ActionFight
			if fought && ic.Knockback > 0 {
				axis := unit(r2.Vec{X: -n.DX, Y: -n.DY})
				if axis.X == 0 && axis.Y == 0 {
					axis = r2.Vec{X: 1}
				}
				push := r2.Scale(ic.Knockback, axis)
				oVel := agents.Velocities.Get(n.E)
				vel.X += push.X
				vel.Y += push.Y
				oVel.X -= push.X
				oVel.Y -= push.Y
			}

			social.Remember(components.Encounter{
				OpponentID: oAgent.ID,
				Action:     actB,
				Delta:      dA,
				Outcome:    classify(dA, dB),
				Tick:       tick,
				Grudge:     actB == components.ActionFight,
			}, ic.MemoryCapacity)
			oSocial.Remember(components.Encounter{
				OpponentID: agent.ID,
				Action:     actA,
				Delta:      dB,
				Outcome:    classify(dB, dA),
				Tick:       tick,
				Grudge:     actA == components.ActionFight,
			}, ic.MemoryCapacity)

			social.SetCooldown(oAgent.ID, cooldown)
			oSocial.SetCooldown(agent.ID, cooldown)

			if energy.Value <= 0 {
				energy.Alive = false
				res.Deaths++
			}
			if oEnergy.Value <= 0 {
				oEnergy.Alive = false
				res.Deaths++
			}

			res.Encounters++
			res.Actions[agent.Strategy][actA]++
			res.Actions[oAgent.Strategy][actB]++
			switch {
			case fought:
				res.Fights++
			case actA == components.ActionIgnore || actB == components.ActionIgnore:
				res.Ignores++
			case actA == components.ActionFlee || actB == components.ActionFlee:
				res.Flees++
			default:
				res.Shares++
			}
			s.records = append(s.records, EncounterRecord{
				Tick:      tick,
				A:         agent.ID,
				B:         oAgent.ID,
				ActionA:   actA,
				ActionB:   actB,
				DeltaA:    dA,
				DeltaB:    dB,
				Knockback: fought && ic.Knockback > 0,
			})
		}
	}

	res.Eaten = s.eatenList
	res.Records = s.records
	return res
}
