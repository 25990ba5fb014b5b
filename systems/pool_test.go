package systems

import (
	"testing"

	"github.com/pthm-cable/skirmish/components"
	"github.com/pthm-cable/skirmish/traits"
)

func TestAcquireResetsEveryField(t *testing.T) {
	env := newTestEnv(t, quietConfig())
	pool := env.Agents

	e := addAgent(env, 10, 20, components.StrategyGrudger, 30)
	social := pool.Socials.Get(e)
	social.Remember(components.Encounter{OpponentID: 99, Tick: 1, Grudge: true}, components.MemoryCapacity)
	social.SetCooldown(99, 10)
	pool.Velocities.Get(e).X = 5
	pool.Steerings.Get(e).AccY = 3
	pool.Energies.Get(e).Age = 12
	pool.Energies.Get(e).Alive = false
	pool.Release(e)

	// The new agent may land in the recycled slot; nothing must leak.
	spawn := AgentSpawn{X: 1, Y: 2, Traits: traits.Default(), Strategy: components.StrategyPassive, Energy: 40}
	f := pool.Acquire(spawn)

	if s := pool.Socials.Get(f); s.MemoryLen != 0 || s.CooldownLen != 0 {
		t.Errorf("reused agent kept social state: %+v", *s)
	}
	if v := pool.Velocities.Get(f); v.X != 0 || v.Y != 0 {
		t.Errorf("reused agent kept velocity %+v", *v)
	}
	if st := pool.Steerings.Get(f); st.AccX != 0 || st.AccY != 0 {
		t.Errorf("reused agent kept acceleration %+v", *st)
	}
	en := pool.Energies.Get(f)
	if !en.Alive || en.Age != 0 || en.Value != 40 {
		t.Errorf("energy = %+v, want fresh with value 40", *en)
	}
	a := pool.Agents.Get(f)
	if a.ID != 2 || a.Strategy != components.StrategyPassive || a.ParentID != 0 {
		t.Errorf("agent = %+v", *a)
	}
}

func TestPoolCounters(t *testing.T) {
	env := newTestEnv(t, quietConfig())
	a := addAgent(env, 0, 0, components.StrategyPassive, 10)
	addAgent(env, 0, 0, components.StrategyPassive, 10)
	env.Agents.Release(a)
	env.Agents.Release(a) // already gone

	st := env.Agents.Stats()
	if st.Acquired != 2 || st.Released != 1 || st.Live != 1 {
		t.Errorf("stats = %+v", st)
	}

	env.Agents.Reset()
	if env.Agents.Live() != 0 || len(env.Agents.Entities(nil)) != 0 {
		t.Error("Reset left agents behind")
	}
	if env.Agents.NextID() != 1 {
		t.Errorf("NextID after reset = %d, want 1", env.Agents.NextID())
	}

	f := env.Food.Acquire(1, 1, 5)
	if got := env.Food.Foods.Get(f); got.ID != 1 || got.Value != 5 {
		t.Errorf("food = %+v", *got)
	}
	env.Food.Reset()
	if env.Food.Live() != 0 {
		t.Error("food Reset left items behind")
	}
}
