package components

import "fmt"

// Strategy identifies the behavioral policy an agent uses in encounters.
// The set is closed; values are stable and index per-strategy tables.
type Strategy uint8

const (
	StrategyAggressive  Strategy = iota // always fights
	StrategyPassive                     // shares, flees known fighters
	StrategyTitForTat                   // shares first, then mirrors
	StrategyGrudger                     // shares until betrayed once
	StrategyOpportunist                 // fights the weak, flees the strong
	StrategyRandom                      // aggression-weighted coin flip

	NumStrategies = iota
)

var strategyNames = [NumStrategies]string{
	"aggressive",
	"passive",
	"tit_for_tat",
	"grudger",
	"opportunist",
	"random",
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Valid reports whether s is a member of the closed set.
func (s Strategy) Valid() bool {
	return int(s) < NumStrategies
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid strategy %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, ok := ParseStrategy(string(b))
	if !ok {
		return fmt.Errorf("unknown strategy %q", string(b))
	}
	*s = v
	return nil
}

// ParseStrategy looks up a strategy by its configuration name.
func ParseStrategy(name string) (Strategy, bool) {
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), true
		}
	}
	return 0, false
}

// StrategyNames returns the configuration names of all strategies.
// The order matches the Strategy constants.
func StrategyNames() []string {
	return strategyNames[:]
}

// Action is the move an agent commits to for a single encounter.
type Action uint8

const (
	ActionFight Action = iota
	ActionShare
	ActionFlee
	ActionIgnore

	NumActions = iota
)

var actionNames = [NumActions]string{"FIGHT", "SHARE", "FLEE", "IGNORE"}

// String returns the display name of the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Outcome classifies an encounter from one side's point of view.
type Outcome uint8

const (
	OutcomeTie Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// String returns the display name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "tie"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
