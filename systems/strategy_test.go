package systems

import (
	"testing"

	"github.com/pthm-cable/skirmish/components"
)

func TestDecide(t *testing.T) {
	fought := components.Encounter{OpponentID: 2, Action: components.ActionFight, Grudge: true}
	shared := components.Encounter{OpponentID: 2, Action: components.ActionShare}
	forgiven := components.Encounter{OpponentID: 2, Action: components.ActionShare, Grudge: true}

	party := func(s components.Strategy, energy float64) Party {
		return Party{ID: 1, Strategy: s, Energy: energy, Aggression: 0.5}
	}
	opp := Party{ID: 2, Strategy: components.StrategyPassive, Energy: 50}

	tests := []struct {
		name  string
		self  Party
		opp   Party
		mem   components.Encounter
		known bool
		want  components.Action
	}{
		{"aggressive always fights", party(components.StrategyAggressive, 50), opp, shared, true, components.ActionFight},
		{"passive shares by default", party(components.StrategyPassive, 50), opp, components.Encounter{}, false, components.ActionShare},
		{"passive flees a known fighter", party(components.StrategyPassive, 50), opp, fought, true, components.ActionFlee},
		{"tit for tat opens with share", party(components.StrategyTitForTat, 50), opp, components.Encounter{}, false, components.ActionShare},
		{"tit for tat mirrors fight", party(components.StrategyTitForTat, 50), opp, fought, true, components.ActionFight},
		{"tit for tat forgives", party(components.StrategyTitForTat, 50), opp, forgiven, true, components.ActionShare},
		{"grudger shares until betrayed", party(components.StrategyGrudger, 50), opp, shared, true, components.ActionShare},
		{"grudger never forgives", party(components.StrategyGrudger, 50), opp, forgiven, true, components.ActionFight},
		{"opportunist fights the weak", party(components.StrategyOpportunist, 70), opp, components.Encounter{}, false, components.ActionFight},
		{"opportunist flees the strong", party(components.StrategyOpportunist, 30), opp, components.Encounter{}, false, components.ActionFlee},
		{"opportunist ignores peers", party(components.StrategyOpportunist, 55), opp, components.Encounter{}, false, components.ActionIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.self, tt.opp, tt.mem, tt.known, NewRNG(1)); got != tt.want {
				t.Errorf("Decide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideRandomRespectsAggression(t *testing.T) {
	rng := NewRNG(4)
	calm := Party{ID: 1, Strategy: components.StrategyRandom, Aggression: 0}
	opp := Party{ID: 2}
	for i := 0; i < 500; i++ {
		if a := Decide(calm, opp, components.Encounter{}, false, rng); a == components.ActionFight || a == components.ActionIgnore {
			t.Fatalf("zero-aggression random agent chose %v", a)
		}
	}

	fierce := Party{ID: 1, Strategy: components.StrategyRandom, Aggression: 1}
	fights := 0
	for i := 0; i < 4000; i++ {
		if Decide(fierce, opp, components.Encounter{}, false, rng) == components.ActionFight {
			fights++
		}
	}
	if frac := float64(fights) / 4000; frac < 0.45 || frac > 0.55 {
		t.Errorf("fight share at aggression 1 = %.3f, want about 0.5", frac)
	}
}
