// Package components defines ECS components for the simulation.
package components

// MemoryCapacity is the maximum number of opponents an agent remembers.
const MemoryCapacity = 5

// CooldownCapacity is the maximum number of simultaneous interaction cooldowns.
const CooldownCapacity = 16

// Encounter is one agent's memory of its last meeting with an opponent.
type Encounter struct {
	OpponentID uint32  `json:"opponent"`
	Action     Action  `json:"action"` // action the opponent took
	Delta      float64 `json:"delta"`  // own energy change, surcharge included
	Outcome    Outcome `json:"outcome"`
	Tick       int64   `json:"tick"`
	Grudge     bool    `json:"grudge"` // opponent has fought us at least once while remembered
}

// Cooldown blocks re-engagement with one opponent for a number of ticks.
type Cooldown struct {
	OpponentID uint32
	Ticks      int32
}

// Social holds an agent's bounded encounter memory and interaction cooldowns.
// Both tables are fixed-size; MemoryLen and CooldownLen count the live prefix.
type Social struct {
	Memory      [MemoryCapacity]Encounter
	MemoryLen   uint8
	Cooldowns   [CooldownCapacity]Cooldown
	CooldownLen uint8
}

// Reset clears all memory and cooldowns.
func (s *Social) Reset() {
	*s = Social{}
}

// Memories returns the live memory entries.
func (s *Social) Memories() []Encounter {
	return s.Memory[:s.MemoryLen]
}

// Recall returns the memory of the given opponent, if any.
func (s *Social) Recall(opponent uint32) (Encounter, bool) {
	for i := uint8(0); i < s.MemoryLen; i++ {
		if s.Memory[i].OpponentID == opponent {
			return s.Memory[i], true
		}
	}
	return Encounter{}, false
}

// Remember records an encounter, replacing any existing entry for the same
// opponent. When capacity entries are already held, the oldest entry by Tick
// is evicted. capacity is clamped to [1, MemoryCapacity].
func (s *Social) Remember(e Encounter, capacity int) {
	if capacity < 1 {
		capacity = 1
	} else if capacity > MemoryCapacity {
		capacity = MemoryCapacity
	}

	for i := uint8(0); i < s.MemoryLen; i++ {
		if s.Memory[i].OpponentID == e.OpponentID {
			e.Grudge = e.Grudge || s.Memory[i].Grudge
			s.Memory[i] = e
			return
		}
	}

	// Capacity may have shrunk since entries were added.
	for int(s.MemoryLen) > capacity {
		s.evictOldest()
	}
	if int(s.MemoryLen) == capacity {
		s.evictOldest()
	}
	s.Memory[s.MemoryLen] = e
	s.MemoryLen++
}

// evictOldest removes the entry with the smallest Tick, keeping order.
func (s *Social) evictOldest() {
	if s.MemoryLen == 0 {
		return
	}
	oldest := uint8(0)
	for i := uint8(1); i < s.MemoryLen; i++ {
		if s.Memory[i].Tick < s.Memory[oldest].Tick {
			oldest = i
		}
	}
	copy(s.Memory[oldest:s.MemoryLen], s.Memory[oldest+1:s.MemoryLen])
	s.MemoryLen--
	s.Memory[s.MemoryLen] = Encounter{}
}

// OnCooldown reports whether re-engagement with opponent is blocked.
func (s *Social) OnCooldown(opponent uint32) bool {
	for i := uint8(0); i < s.CooldownLen; i++ {
		if s.Cooldowns[i].OpponentID == opponent {
			return s.Cooldowns[i].Ticks > 0
		}
	}
	return false
}

// SetCooldown blocks opponent for the given number of ticks. When the table
// is full, the entry closest to expiry is overwritten.
func (s *Social) SetCooldown(opponent uint32, ticks int32) {
	if ticks <= 0 {
		return
	}
	for i := uint8(0); i < s.CooldownLen; i++ {
		if s.Cooldowns[i].OpponentID == opponent {
			s.Cooldowns[i].Ticks = ticks
			return
		}
	}
	if s.CooldownLen < CooldownCapacity {
		s.Cooldowns[s.CooldownLen] = Cooldown{OpponentID: opponent, Ticks: ticks}
		s.CooldownLen++
		return
	}
	soonest := 0
	for i := 1; i < CooldownCapacity; i++ {
		if s.Cooldowns[i].Ticks < s.Cooldowns[soonest].Ticks {
			soonest = i
		}
	}
	s.Cooldowns[soonest] = Cooldown{OpponentID: opponent, Ticks: ticks}
}

// TickCooldowns decrements every cooldown and drops expired ones.
func (s *Social) TickCooldowns() {
	n := uint8(0)
	for i := uint8(0); i < s.CooldownLen; i++ {
		c := s.Cooldowns[i]
		c.Ticks--
		if c.Ticks > 0 {
			s.Cooldowns[n] = c
			n++
		}
	}
	for i := n; i < s.CooldownLen; i++ {
		s.Cooldowns[i] = Cooldown{}
	}
	s.CooldownLen = n
}
