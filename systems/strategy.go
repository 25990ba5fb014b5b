package systems

import "github.com/pthm-cable/skirmish/components"

// Opportunist energy ratios.
const (
	opportunistFightRatio = 1.25
	opportunistFleeRatio  = 0.8
)

// Party is one side's view of an encounter.
type Party struct {
	ID         uint32
	Strategy   components.Strategy
	Energy     float64
	Aggression float64
}

// Decide returns the action self takes against opp. mem is self's memory of
// opp; known is false on a first encounter.
func Decide(self, opp Party, mem components.Encounter, known bool, rng *RNG) components.Action {
	switch self.Strategy {
	case components.StrategyAggressive:
		return components.ActionFight

	case components.StrategyPassive:
		if known && mem.Grudge {
			return components.ActionFlee
		}
		return components.ActionShare

	case components.StrategyTitForTat:
		if known && mem.Action == components.ActionFight {
			return components.ActionFight
		}
		return components.ActionShare

	case components.StrategyGrudger:
		if known && mem.Grudge {
			return components.ActionFight
		}
		return components.ActionShare

	case components.StrategyOpportunist:
		switch {
		case self.Energy > opp.Energy*opportunistFightRatio:
			return components.ActionFight
		case self.Energy < opp.Energy*opportunistFleeRatio:
			return components.ActionFlee
		default:
			return components.ActionIgnore
		}

	case components.StrategyRandom:
		if rng.Chance(0.5 * self.Aggression) {
			return components.ActionFight
		}
		if rng.Chance(0.5) {
			return components.ActionShare
		}
		return components.ActionFlee
	}
	return components.ActionIgnore
}
